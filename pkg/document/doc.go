/*
Package document defines the block, attachment and metadata model of a tiled,
multi-dimensional image container, and the read / append-only write
capabilities that a transcode runs against.

A document is made of:
  - blocks: rectangular tiles of pixels at a coordinate, each with a
    compression mode, optional side metadata and an optional side attachment
  - attachments: opaque named payloads identified by a content GUID
  - one XML metadata document

The concrete on-disk format lives in package container.
*/
package document
