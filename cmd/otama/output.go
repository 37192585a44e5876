// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/otama-dev/otama-go/internal/config"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
	"github.com/otama-dev/otama-go/pkg/otama"
)

// printer renders command results as text or JSON.
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, cfg *config.Config) printer {
	return printer{w: w, format: cfg.Output.Format}
}

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return otamaerr.Wrap(err, otamaerr.CodeCLIOutputFailure, "encoding output")
	}
	return nil
}

func (p printer) text(format string, args ...any) error {
	if _, err := fmt.Fprintf(p.w, format, args...); err != nil {
		return otamaerr.Wrap(err, otamaerr.CodeCLIOutputFailure, "writing output")
	}
	return nil
}

type insertResult struct {
	Path string `json:"path"`
	ID   string `json:"id"`
}

func (p printer) inserted(results []insertResult) error {
	if p.format == config.FormatJSON {
		return p.json(results)
	}
	for _, r := range results {
		if err := p.text("%s\t%s\n", r.ID, r.Path); err != nil {
			return err
		}
	}
	return nil
}

type hitResult struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Similarity float32 `json:"similarity"`
	Value      any     `json:"value"`
}

func (p printer) hits(hits []otama.SearchHit) error {
	if p.format == config.FormatJSON {
		out := make([]hitResult, len(hits))
		for i, h := range hits {
			out[i] = hitResult{Rank: i + 1, ID: h.ID, Similarity: h.Similarity, Value: otama.Interface(h.Value)}
		}
		return p.json(out)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "RANK\tID\tSIMILARITY"); err != nil {
		return otamaerr.Wrap(err, otamaerr.CodeCLIOutputFailure, "writing output")
	}
	for i, h := range hits {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%.4f\n", i+1, h.ID, h.Similarity); err != nil {
			return otamaerr.Wrap(err, otamaerr.CodeCLIOutputFailure, "writing output")
		}
	}
	if err := tw.Flush(); err != nil {
		return otamaerr.Wrap(err, otamaerr.CodeCLIOutputFailure, "writing output")
	}
	return nil
}

func (p printer) value(key string, v any) error {
	if p.format == config.FormatJSON {
		return p.json(map[string]any{key: v})
	}
	return p.text("%v\n", v)
}

func (p printer) done(action string) error {
	if p.format == config.FormatJSON {
		return p.json(map[string]string{"status": "ok", "action": action})
	}
	return p.text("%s: ok\n", action)
}
