// Package cli handles cmd line input for debugging searches in real time.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/jamofind/internal/utils"
	"github.com/bastiangx/jamofind/pkg/resolve"
	"github.com/bastiangx/jamofind/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Search modes, switched by typing ":<mode>".
const (
	ModeRegion  = "region"
	ModeDecode  = "decode"
	ModeApart   = "apart"
	ModeResolve = "resolve"
	ModeRate    = "rate"
)

var (
	nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	codeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// InputHandler reads queries line by line and prints what the indexes return.
// A line is searched in the current mode; in resolve mode "address / name"
// splits into the region and complex parts.
type InputHandler struct {
	deps   server.Deps
	bounds utils.QueryBounds
	limit  int
	mode   string

	in  io.Reader
	out *log.Logger
}

// NewInputHandler creates a handler reading from in and printing through out.
func NewInputHandler(deps server.Deps, bounds utils.QueryBounds, limit int, in io.Reader, out *log.Logger) *InputHandler {
	return &InputHandler{
		deps:   deps,
		bounds: bounds,
		limit:  limit,
		mode:   ModeRegion,
		in:     in,
		out:    out,
	}
}

// Start runs the prompt loop until the input ends or ctx is done.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("jamofind CLI")
	h.out.Print("type a query and press Enter; :region :decode :apart :resolve :rate switch modes (Ctrl+C to exit)")

	scanner := bufio.NewScanner(h.in)
	for {
		h.out.Printf("[%s] > ", h.mode)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if mode, ok := strings.CutPrefix(line, ":"); ok {
			h.switchMode(mode)
			continue
		}
		h.handleInput(ctx, line)
	}
}

func (h *InputHandler) switchMode(mode string) {
	switch mode {
	case ModeRegion, ModeDecode, ModeApart, ModeResolve, ModeRate:
		h.mode = mode
		h.out.Infof("Mode: %s", mode)
	default:
		h.out.Errorf("Unknown mode: %s", mode)
	}
}

// handleInput validates one query and prints its results.
func (h *InputHandler) handleInput(ctx context.Context, query string) {
	var addr, apt string
	if h.mode == ModeResolve {
		addr, apt, _ = strings.Cut(query, "/")
		addr, apt = strings.TrimSpace(addr), strings.TrimSpace(apt)
	} else {
		addr = query
	}

	if reason := h.bounds.Check(addr); reason != "" {
		h.out.Errorf("%s: '%s'", reason, query)
		return
	}

	start := time.Now()
	var lines []string

	switch h.mode {
	case ModeRegion, ModeDecode:
		search := h.deps.Regions.Search
		if h.mode == ModeDecode {
			if !utils.IsOnlyNumbers(addr) {
				h.out.Errorf("code must be digits: '%s'", addr)
				return
			}
			search = h.deps.Regions.Decode
		}
		for _, c := range search(addr) {
			lines = append(lines, fmt.Sprintf("%-40s %s", nameStyle.Render(c.Address), codeStyle.Render(c.LawAddrCode)))
		}
	case ModeApart:
		for _, a := range h.deps.Apartments.Search(addr) {
			lines = append(lines, fmt.Sprintf("%-40s %s", nameStyle.Render(a.Name), codeStyle.Render(a.LawAddrCode)))
		}
	case ModeResolve:
		ids, err := h.deps.Resolver.Search(ctx, addr, apt)
		if err != nil {
			h.out.Errorf("Resolving '%s': %v", query, err)
			return
		}
		for _, id := range ids {
			lines = append(lines, fmt.Sprintf("%-40s %s %s", nameStyle.Render(id.Name), id.Address, codeStyle.Render(id.LawAddrCode)))
		}
	case ModeRate:
		address := addr
		if codes := h.deps.Regions.Search(addr); len(codes) > 0 {
			address = codes[0].Address
		}
		lines = append(lines, fmt.Sprintf("%-40s %s", address, nameStyle.Render(resolve.RateRegion(address))))
	}

	h.out.Debugf("Took [ %v ] for %s '%s'", time.Since(start), h.mode, query)

	if len(lines) == 0 {
		h.out.Warnf("No results for '%s'", query)
		return
	}

	h.out.Printf("Found %s results for '%s':", humanize.Comma(int64(len(lines))), query)
	for i, line := range lines {
		if h.limit > 0 && i == h.limit {
			h.out.Printf("... %s more", humanize.Comma(int64(len(lines)-h.limit)))
			break
		}
		h.out.Printf("%2d. %s", i+1, line)
	}
}
