package domain

import "time"

// SourceAsset is the visitor's uploaded staircase photo after ingestion.
// Created on file selection, replaced wholesale on re-upload, discarded on
// wizard reset.
type SourceAsset struct {
	Name       string
	MIMEType   string
	Data       []byte
	Bytes      int64
	PreviewURI string
	Compressed bool
	CreatedAt  time.Time
}

// DownloadArtifact is the composed raster export presented to the visitor.
type DownloadArtifact struct {
	Filename string
	MIMEType string
	Data     []byte
	DataURI  string
	// BaseOnly reports that watermark compositing was skipped and the
	// artifact contains only the rendered base image.
	BaseOnly bool
}
