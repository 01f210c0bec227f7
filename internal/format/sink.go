package format

import (
	"io"

	"github.com/guttosm/goldrate/internal/domain/models"
)

// Sink accepts plain text.
type Sink interface {
	Send(text string) error
}

// RichSink is a Sink that can also display Markdown.
type RichSink interface {
	Sink
	SendRich(markdown string) error
}

// Deliver renders qs as Markdown when sink supports it, as plain text
// otherwise.
func Deliver(sink Sink, qs []models.Quote) error {
	if rs, ok := sink.(RichSink); ok {
		return rs.SendRich(Summary(qs, true))
	}
	return sink.Send(Summary(qs, false))
}

// WriterSink writes plain text to an io.Writer, one message per line group.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Send(text string) error {
	_, err := io.WriteString(s.W, text+"\n")
	return err
}

// MarkdownWriterSink is a WriterSink that prefers Markdown.
type MarkdownWriterSink struct {
	WriterSink
}

func (s MarkdownWriterSink) SendRich(markdown string) error {
	return s.Send(markdown)
}
