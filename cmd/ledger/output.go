package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/logrusorgru/aurora"

	"ledger/pkg/core"
)

// errReported marks an upstream error whose payload was already printed.
var errReported = errors.New("upstream error reported")

type printer struct {
	w  io.Writer
	au aurora.Aurora
}

func newPrinter(w io.Writer, au aurora.Aurora) *printer {
	return &printer{w: w, au: au}
}

func (p *printer) JSON(v any) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// Report prints v, including the partial records of a failed listing,
// followed by the upstream payload of err when there is one.
func (p *printer) Report(v any, err error) error {
	if !isNil(v) {
		if perr := p.JSON(v); perr != nil {
			return perr
		}
	}
	if err == nil {
		return nil
	}
	payload, ok := core.Payload(err)
	if !ok {
		return err
	}
	_, _ = fmt.Fprintln(p.w, p.au.Red(string(payload)))
	return fmt.Errorf("%w: %v", errReported, err)
}

// Ticker prints one quote per line, bid in green and ask in red.
func (p *printer) Ticker(t core.Ticker) {
	_, _ = fmt.Fprintf(p.w, "%s %s bid=%s ask=%s last=%s\n",
		t.Timestamp, p.au.Bold(t.Product), p.au.Green(t.Bid), p.au.Red(t.Ask), t.Last)
}

func isNil(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *core.Price:
		return t == nil
	case *core.Order:
		return t == nil
	case []core.Product:
		return t == nil
	case []core.Account:
		return t == nil
	case []core.Fill:
		return t == nil
	case []core.Transfer:
		return t == nil
	}
	return false
}
