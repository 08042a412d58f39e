package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"openbook-be/internal/config"
	"openbook-be/pkg/events"
	pktNats "openbook-be/pkg/nats"

	"github.com/fatih/color"
)

var typeColors = map[string]*color.Color{
	events.TypeProfileScraped:         color.New(color.FgCyan),
	events.TypeKnowledgeBaseGenerated: color.New(color.FgMagenta),
	events.TypeChatSessionStarted:     color.New(color.FgGreen),
	events.TypeChatSessionDeleted:     color.New(color.FgYellow),
}

func render(event events.Event) string {
	payload := event.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(parts, " ")
}

func main() {
	filter := flag.String("filter", "*", "event type to follow, or * for all")
	durable := flag.String("durable", "", "durable consumer name; empty follows new events only")
	flag.Parse()

	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, *filter, *durable, func(_ context.Context, event events.Event) error {
		c, ok := typeColors[event.EventType()]
		if !ok {
			c = color.New(color.FgWhite)
		}
		fmt.Printf("%s %s %s\n",
			event.Timestamp().Format("15:04:05"),
			c.Sprintf("%-24s", event.EventType()),
			render(event),
		)
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	color.Cyan("Tailing %s (Ctrl+C to stop)", pktNats.Subject(*filter))
	<-ctx.Done()
}
