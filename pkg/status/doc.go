/*
Package status renders transcode progress and per-file outcomes for humans,
and writes report files safely.

	+-------------+        +--------------+
	|  Progress   |        |  Formatter   |
	| (pterm area)|        | (one-liners) |
	+------+------+        +------+-------+
	       |                      |
	       +----------+-----------+
	                  |
	           +------+------+
	           |   Atomic    |
	           |   writes    |
	           +-------------+

🎯 Purpose:
- Show "<Phase> done/todo" while a file is transcoded, redrawn in place
  while the phase stays the same
- Format one line per finished file (completed, cancelled, failed)
- Write logs and metric snapshots through a temp file and rename

🔄 Flow:
1. The CLI creates a Progress for the terminal (or a plain writer)
2. Every transcode.ProgressEvent goes through Progress.Update
3. A phase change freezes the previous line and starts a new one
4. Stop freezes the last line

📝 Design:
Progress keeps the previous phase itself, so the transcode engine never needs
to know how events are drawn.
*/
package status
