/*
Package config loads czicompress settings from YAML, JSON or HCL files.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+  +----+----+  +----+----+
	|   YAML   |  |  JSON   |  |   HCL   |
	|  Parser  |  | Parser  |  | Parser  |
	+----------+  +---------+  +---------+

🎯 Purpose:
- Picks a parser by file extension
- Rejects unknown fields
- Fills in the same defaults as the command line

🔄 Flow:
1. Load reads the file and finds a registered Parser
2. The parser decodes the raw fields
3. Validate parses command, strategy and compression options
4. Processor and FolderCompressor hand the result to the runners

🔍 Example:

	cfg, err := config.Load(ctx, "czicompress.yaml")
	if err != nil {
		return err
	}
	summary, err := cfg.FolderCompressor().Run(ctx, in, out, observer)

HCL files may use the default_options variable:

	command             = "compress"
	compression_options = default_options
*/
package config
