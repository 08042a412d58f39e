package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/fatih/color"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type session struct {
	SessionId string `json:"session_id"`
	Username  string `json:"username"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	TotalTokensUsed int `json:"total_tokens_used"`
}

type chatResponse struct {
	Message           string `json:"message"`
	TokensUsed        int    `json:"tokens_used"`
	ContextMode       string `json:"context_mode"`
	MatchedRepository string `json:"matched_repository"`
}

var client = &http.Client{Timeout: 5 * time.Minute}

func sendRequest(method, target string, body interface{}) (int, *envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, target, bodyReader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(raw) == 0 {
		return resp.StatusCode, nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode %s: %w", string(raw), err)
	}
	return resp.StatusCode, &env, nil
}

func must(step string, status, want int, env *envelope, err error) {
	if err != nil {
		color.Red("❌ %s failed: %v", step, err)
		os.Exit(1)
	}
	if status != want {
		msg := ""
		if env != nil {
			msg = env.Message
		}
		color.Red("❌ %s: status %d (want %d) %s", step, status, want, msg)
		os.Exit(1)
	}
	color.Green("✅ %s: %d", step, status)
}

func main() {
	baseURL := flag.String("base", "http://localhost:3000/api", "API base URL")
	username := flag.String("user", "octocat", "GitHub username to chat with")
	keep := flag.Bool("keep", false, "keep the session instead of deleting it")
	flag.Parse()

	messages := flag.Args()
	if len(messages) == 0 {
		messages = []string{
			"What do you mostly work on?",
			"Tell me about your most starred project.",
		}
	}

	color.Cyan("🚀 Chat smoke test against %s as %s\n", *baseURL, *username)

	// 1. Start
	color.Yellow("\n1. Start session (first call may scrape and summarize)")
	status, env, err := sendRequest(http.MethodPost, *baseURL+"/chat/"+url.PathEscape(*username)+"/start", nil)
	must("start", status, http.StatusOK, env, err)
	var s session
	if err := json.Unmarshal(env.Data, &s); err != nil {
		color.Red("❌ decode session: %v", err)
		os.Exit(1)
	}
	fmt.Printf("   session: %s\n", s.SessionId)

	// 2. Send
	for i, text := range messages {
		color.Yellow("\n2.%d Send: %q", i+1, text)
		status, env, err = sendRequest(http.MethodPost, *baseURL+"/chat/send?sessionId="+url.QueryEscape(s.SessionId), map[string]string{"message": text})
		must("send", status, http.StatusOK, env, err)
		var reply chatResponse
		_ = json.Unmarshal(env.Data, &reply)
		color.Magenta("   [%s %s] tokens=%d", reply.ContextMode, reply.MatchedRepository, reply.TokensUsed)
		fmt.Println("   " + reply.Message)
	}

	// 3. Get
	color.Yellow("\n3. Get session")
	status, env, err = sendRequest(http.MethodGet, *baseURL+"/chat/session/"+url.PathEscape(s.SessionId), nil)
	must("get", status, http.StatusOK, env, err)
	_ = json.Unmarshal(env.Data, &s)
	fmt.Printf("   messages=%d total_tokens=%d\n", len(s.Messages), s.TotalTokensUsed)
	if len(s.Messages) != 2*len(messages) {
		color.Red("❌ expected %d messages, got %d", 2*len(messages), len(s.Messages))
		os.Exit(1)
	}

	if *keep {
		color.Cyan("\nDone, session kept.")
		return
	}

	// 4. Delete
	color.Yellow("\n4. Delete session")
	status, env, err = sendRequest(http.MethodDelete, *baseURL+"/chat/session/"+url.PathEscape(s.SessionId), nil)
	must("delete", status, http.StatusNoContent, env, err)

	status, env, err = sendRequest(http.MethodGet, *baseURL+"/chat/session/"+url.PathEscape(s.SessionId), nil)
	must("get after delete", status, http.StatusNotFound, env, err)

	color.Cyan("\nDone.")
}
