// Package model holds the message and result types shared by the converter packages.
package model

// Message is one email message to convert, read from an EML file or an mbox archive.
type Message struct {
	ID     string
	Source string
	Raw    []byte
}

// Status describes how a conversion ended when it did not fail.
type Status string

const (
	StatusConverted    Status = "converted"
	StatusPartNotFound Status = "part_not_found"
)

// Result reports the outcome of converting a single message.
type Result struct {
	Status Status
	Source string
	Output string
	Bytes  int
}
