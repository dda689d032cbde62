package main

import (
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"
)

func endIfErr(e error) {
	if e != nil {
		logrus.WithError(e).Fatal("pdfstamp failed")
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
