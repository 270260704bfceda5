/*
Package operation is the entry point for running a transcode on a pair of
open documents.

	+-------------+      +-----------+      +-------------+
	|  Operator   | ---> |  Policy   | ---> |   Engine    |
	| (Configure) |      | (command) |      | (3 phases)  |
	+-------------+      +-----------+      +-------------+

🎯 Purpose:
- Turn a command, a strategy and compression options into a policy
- Run the transcode engine with a caller supplied progress callback

🔄 Flow:
1. Configure stores source, destination and parameters
2. Run picks the compress or decompress policy (unknown commands fail here, before any I/O)
3. The engine copies blocks, attachments and metadata

🤝 Ownership:
The source and destination are borrowed for the duration of Run. The caller
opens them, closes the destination and deletes it if Run failed.

🔍 Example:

	op := operation.New()
	op.Configure(operation.Options{
		Source:      reader,
		Destination: writer,
		Command:     transcode.CommandCompress,
		Strategy:    transcode.StrategyOnlyUncompressed,
		Compression: codec.DefaultOptions(),
	})
	ok, err := op.Run(ctx, func(ev transcode.ProgressEvent) bool { return true })
*/
package operation
