/*
Package transcode rewrites the compression of the blocks of a document while
copying it to a new destination.

A run has three phases, always in this order and each exactly once:

 1. Blocks: every block is read, handed to the Policy for a decision
    (copy, decompress or compress), transformed and appended to the
    destination. Statistics counts the outcome actually carried out.
 2. Attachments: every attachment is copied verbatim.
 3. Metadata: the Policy may rewrite the current compression parameters
    based on the final Statistics.

Progress is reported through a ProgressFunc after every unit of work.
Returning false stops the run at that checkpoint; Run then returns false
with a nil error. Fatal problems are returned as *Error and can be matched
with errors.Is against ErrIO, ErrUnsupportedCodec, ErrOverflow and
ErrConfiguration.

Blocks whose compression mode the codec cannot decode are copied verbatim
under both policies and counted as CopiedVerbatim.
*/
package transcode
