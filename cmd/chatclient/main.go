// Command chatclient is a terminal front end for the chat server. It keeps
// the conversation in a local store, animates replies and locks itself
// until the gate hour.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"after3am/backend/internal/ambient"
	"after3am/backend/internal/app"
	"after3am/backend/internal/client"
	"after3am/backend/internal/config"
	"after3am/backend/internal/localstore"
	"after3am/backend/internal/prompt"
	"after3am/backend/internal/session"
	"after3am/backend/internal/timegate"
	"after3am/backend/internal/typewriter"
)

func main() {
	os.Exit(run())
}

type styles struct {
	title lipgloss.Style
	hint  lipgloss.Style
	reply lipgloss.Style
	warn  lipgloss.Style
	mark  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C3A6FF")),
		hint:  lipgloss.NewStyle().Italic(true).Faint(true),
		reply: lipgloss.NewStyle().Foreground(lipgloss.Color("#F5E0DC")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		mark:  lipgloss.NewStyle().Foreground(lipgloss.Color("#8BD5CA")).Bold(true),
	}
}

type chat struct {
	cfg   *config.Config
	st    styles
	sess  *session.Session
	tw    *typewriter.Typewriter
	audio *ambient.Switch
	gate  timegate.Gate
	open  bool

	outMu sync.Mutex
	out   io.Writer

	turns sync.WaitGroup
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.ParseLevel(cfg.LogLevel),
	})))

	store, err := localstore.Open(cfg.StorePath)
	if err != nil {
		slog.Error("Failed to open local store", "path", cfg.StorePath, "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close local store", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &chat{cfg: cfg, st: newStyles(), out: os.Stdout, audio: ambient.NewSwitch()}
	c.tw = typewriter.New(time.Duration(cfg.TypingIntervalMS)*time.Millisecond, c.render)
	defer c.tw.Stop()
	c.sess = session.New(store, client.New(cfg.ServerURL), session.WithListener(func(u session.Update) {
		c.tw.Update(u.TurnID, u.Content)
	}))
	if err := c.sess.Load(ctx); err != nil {
		slog.Error("Failed to restore conversation", "error", err)
		return 1
	}
	c.gate = timegate.New(cfg.GateHour, cfg.DevMode || c.sess.DevMode(ctx))

	audio, unsubscribe := c.audio.Subscribe()
	defer unsubscribe()
	go c.announceAudio(audio)

	c.welcome()

	lines := make(chan string)
	go readLines(os.Stdin, lines)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	ticker := time.NewTicker(timegate.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok || c.handle(ctx, line) {
				c.sess.Cancel()
				c.turns.Wait()
				return 0
			}
		case <-interrupts:
			if c.sess.State() != session.StateStreaming {
				c.turns.Wait()
				return 0
			}
			c.sess.Cancel()
			c.println(c.st.hint.Render("(hushed)"))
		case <-ticker.C:
			c.checkGate()
		}
	}
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// handle processes one input line and reports whether to quit.
func (c *chat) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "/") {
		return c.command(ctx, line)
	}

	if !c.gate.Open(time.Now()) {
		c.locked()
		return false
	}

	c.turns.Add(1)
	go func() {
		defer c.turns.Done()
		if err := c.sess.Submit(ctx, line); err != nil {
			c.println(c.st.warn.Render(err.Error()))
			return
		}
		if err := c.tw.Wait(ctx); err != nil {
			return
		}
		c.println("")
		c.println(c.st.hint.Render(c.sess.Placeholder()))
	}()
	return false
}

func (c *chat) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case "/quit", "/exit":
		return true
	case "/modes":
		for _, m := range prompt.Modes() {
			marker := "  "
			if prompt.Mode(m.ID) == c.sess.Mode() {
				marker = c.st.mark.Render("* ")
			}
			c.println(fmt.Sprintf("%s%-11s %s", marker, m.ID, m.Name))
		}
	case "/mode":
		if err := c.sess.SetMode(ctx, strings.TrimSpace(arg)); err != nil {
			if errors.Is(err, session.ErrUnknownMode) {
				c.println(c.st.warn.Render(fmt.Sprintf("No such mode %q. Try /modes.", arg)))
				return false
			}
			slog.Warn("Failed to save mode", "error", err)
		}
		c.println(c.st.title.Render(prompt.DisplayName(string(c.sess.Mode()))))
		c.println(c.st.hint.Render(c.sess.Placeholder()))
	case "/new":
		if err := c.sess.Clear(ctx); err != nil {
			slog.Warn("Failed to clear stored conversation", "error", err)
		}
		c.println(c.st.hint.Render("The slate is blank again."))
	case "/audio":
		c.audio.Toggle()
	case "/dev":
		on := !c.sess.DevMode(ctx)
		if err := c.sess.SetDevMode(ctx, on); err != nil {
			slog.Warn("Failed to save dev mode", "error", err)
		}
		c.gate = timegate.New(c.cfg.GateHour, c.cfg.DevMode || on)
		c.println(c.st.hint.Render(fmt.Sprintf("dev mode %t", on)))
		c.checkGate()
	case "/history":
		for _, m := range c.sess.History() {
			c.println(fmt.Sprintf("%s: %s", m.Role, m.Content))
		}
	default:
		c.println(c.st.hint.Render("Commands: /modes /mode <id> /new /history /audio /dev /quit"))
	}
	return false
}

func (c *chat) welcome() {
	c.println(c.st.title.Render("Ask Me After 3AM"))
	c.open = c.gate.Open(time.Now())
	if !c.open {
		c.locked()
		return
	}
	for _, m := range c.sess.History() {
		c.println(c.st.hint.Render(fmt.Sprintf("%s: %s", m.Role, m.Content)))
	}
	c.println(c.st.hint.Render(c.sess.Placeholder()))
}

func (c *chat) locked() {
	status := c.gate.Status(time.Now())
	c.println(c.st.warn.Render(fmt.Sprintf("Come back at %02d:00. Opens in %s.", status.Hour, status.Countdown)))
}

// checkGate announces the gate opening or closing.
func (c *chat) checkGate() {
	open := c.gate.Open(time.Now())
	if open == c.open {
		return
	}
	c.open = open
	if open {
		c.println(c.st.title.Render("It is late enough. Ask me anything."))
		c.println(c.st.hint.Render(c.sess.Placeholder()))
		return
	}
	c.locked()
}

func (c *chat) announceAudio(updates <-chan bool) {
	for on := range updates {
		track := ambient.DefaultTrack
		if on {
			c.println(c.st.hint.Render(fmt.Sprintf("ambient on: %s (volume %.1f)", track.Source, track.Volume)))
		} else {
			c.println(c.st.hint.Render("ambient off"))
		}
	}
}

func (c *chat) render(f typewriter.Frame) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if f.Reset {
		fmt.Fprint(c.out, "\n"+c.st.mark.Render("✦ "))
	}
	fmt.Fprint(c.out, c.st.reply.Render(f.Delta))
}

func (c *chat) println(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintln(c.out, s)
}
