package parser

import (
	"io"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
	"github.com/dgallion1/rfc2texi/internal/markup"
)

// XMLParser handles schema markup sources.
type XMLParser struct{}

func (p *XMLParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	root, err := markup.Parse(r)
	if err != nil {
		return nil, err
	}
	return docmodel.Build(root)
}
