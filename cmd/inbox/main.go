// Command inbox is a terminal inbox for the messaging service. It fetches the
// caller's direct messages, prints them grouped per conversation partner, and
// marks the unread ones read, the same cycle the web inbox runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"messaging-service/internal/inbox"
	"messaging-service/internal/models"
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8083", "messaging service base URL")
	token := flag.String("token", os.Getenv("FAMJAM_TOKEN"), "session bearer token")
	poll := flag.Duration("poll", 0, "refresh interval; 0 refreshes once and exits")
	to := flag.String("to", "", "recipient user id; requires -message")
	message := flag.String("message", "", "message text to send before refreshing")
	flag.Parse()

	if *token == "" {
		log.Fatal("a session token is required (-token or FAMJAM_TOKEN)")
	}

	client := inbox.NewClient(*baseURL, *token, &http.Client{Timeout: 15 * time.Second})

	ctx := context.Background()

	me, err := client.Me(ctx)
	if err != nil {
		log.Fatalf("failed to resolve identity: %v", err)
	}

	members, err := client.FamilyMembers(ctx)
	if err != nil {
		log.Fatalf("failed to load family members: %v", err)
	}
	directory := inbox.NewDirectory(members, me)

	if *message != "" || *to != "" {
		if *message == "" || *to == "" {
			log.Fatal("-to and -message must be used together")
		}
		if err := client.SendMessage(ctx, *to, *message); err != nil {
			log.Fatalf("failed to send message: %v", err)
		}
		fmt.Printf("sent to %s\n", directory[*to])
	}

	ctrl := inbox.NewSyncController(client, consoleRenderer{me: me}, consoleBadge{}, me.ID, func() inbox.Directory {
		return directory
	})
	defer ctrl.Close()

	if _, err := ctrl.Refresh(ctx); err != nil {
		log.Fatalf("refresh failed: %v", err)
	}

	if *poll <= 0 {
		return
	}
	ticker := time.NewTicker(*poll)
	defer ticker.Stop()
	for range ticker.C {
		if _, err := ctrl.Refresh(ctx); err != nil {
			log.Printf("refresh failed: %v", err)
		}
	}
}

type consoleRenderer struct {
	me models.User
}

func (r consoleRenderer) RenderConversations(conversations []models.Conversation) {
	if len(conversations) == 0 {
		fmt.Println("no conversations yet")
		return
	}
	for _, conv := range conversations {
		marker := " "
		if conv.HasUnread {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, conv.DisplayName)
		for _, msg := range conv.Messages {
			who := conv.DisplayName
			if msg.SenderID == r.me.ID {
				who = "me"
			}
			fmt.Printf("    [%s] %s: %s\n", msg.SentAt.Local().Format("Jan 2 15:04"), who, msg.Content)
		}
	}
}

type consoleBadge struct{}

func (consoleBadge) ClearUnreadBadge() {
	fmt.Println("(all caught up)")
}
