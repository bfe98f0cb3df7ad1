// Package cli provides an interactive input handler for debugging predictions
// in real time.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/nextword/internal/logger"
	"github.com/bastiangx/nextword/internal/utils"
	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler reads lines and prints the ranked suggestions for each one.
// A trailing space is kept, so "ny dia " asks for the word after "dia".
//
// Lines starting with ':' are commands:
//
//	:stats      print cache statistics
//	:purge      empty the cache
//	:limit N    change the number of suggestions
type InputHandler struct {
	suggester    suggest.ISuggester
	suggestLimit int
	in           *bufio.Reader
	out          *log.Logger
	requestCount int
}

// NewInputHandler creates a handler reading from r and printing to w
func NewInputHandler(suggester suggest.ISuggester, limit int, r io.Reader, w io.Writer) *InputHandler {
	return &InputHandler{
		suggester:    suggester,
		suggestLimit: limit,
		in:           bufio.NewReader(r),
		out:          logger.NewWithConfig(w, "", log.InfoLevel, false, false, log.TextFormatter),
	}
}

// Start runs the input loop until the input ends. EOF is not an error.
func (h *InputHandler) Start() error {
	h.out.Print("nextword CLI [DBG]")
	h.out.Print("type some words and press Enter, end with a space to predict the next word (Ctrl+C to exit):")

	for {
		line, err := h.in.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			h.handleLine(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleLine(line string) {
	if strings.HasPrefix(line, ":") {
		h.handleCommand(strings.Fields(line[1:]))
		return
	}

	h.requestCount++
	start := time.Now()
	suggestions := h.suggester.Suggest(line, h.suggestLimit)
	log.Debugf("Took [ %v ] for %q", time.Since(start), line)

	if len(suggestions) == 0 {
		h.out.Printf("No suggestions for '%s'", line)
		return
	}

	h.out.Printf("Found %d suggestions for '%s':", len(suggestions), line)
	for i, s := range suggestions {
		word := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Word)
		h.out.Printf("%2d. %-40s (score: %.4f)", i+1, word, s.Score)
	}
}

func (h *InputHandler) handleCommand(args []string) {
	if len(args) == 0 {
		h.out.Print("commands: :stats, :purge, :limit N")
		return
	}

	switch args[0] {
	case "stats":
		st := h.suggester.Stats()
		h.out.Printf("requests: %s  entries: %s/%s  hits: %s  misses: %s  evictions: %s",
			utils.FormatWithCommas(int64(h.requestCount)),
			utils.FormatWithCommas(int64(st.Entries)),
			utils.FormatWithCommas(int64(st.Capacity)),
			utils.FormatWithCommas(st.Hits),
			utils.FormatWithCommas(st.Misses),
			utils.FormatWithCommas(st.Evictions))
	case "purge":
		purger, ok := h.suggester.(interface{ Purge() int })
		if !ok {
			h.out.Print("cache cannot be purged")
			return
		}
		h.out.Printf("purged %d entries", purger.Purge())
	case "limit":
		if len(args) != 2 {
			h.out.Printf("limit is %d", h.suggestLimit)
			return
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			h.out.Printf("invalid limit: %s", args[1])
			return
		}
		h.suggestLimit = n
		h.out.Printf("limit set to %d", n)
	default:
		h.out.Printf("unknown command: %s", args[0])
	}
}
