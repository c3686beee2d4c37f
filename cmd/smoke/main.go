package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type session struct {
	Id           string            `json:"_id"`
	Diagnosis    []json.RawMessage `json:"diagnosis"`
	Conversation []json.RawMessage `json:"conversation"`
	SessionTitle string            `json:"sessionTitle"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var baseURL string

	root := &cobra.Command{
		Use:   "smoke",
		Short: "End-to-end checks against a running symptom checker API",
	}
	root.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:3000", "server base URL")

	root.AddCommand(&cobra.Command{
		Use:   "guest",
		Short: "Guest gets exactly one analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuest(newClient(baseURL))
		},
	})

	var message, followUp string
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Register, analyze, follow up, list history, fetch session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUser(newClient(baseURL), message, followUp)
		},
	}
	userCmd.Flags().StringVar(&message, "message", "I have a runny nose and mild fever", "first message")
	userCmd.Flags().StringVar(&followUp, "follow-up", "it's worse now, I also have chills", "second message")
	root.AddCommand(userCmd)

	return root
}

func newClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(90*time.Second).
		SetHeader("Content-Type", "application/json")
}

func call(req *resty.Request, method, url string) (*resty.Response, *envelope, error) {
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, nil, err
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return resp, nil, fmt.Errorf("decode %s %s: %w", method, url, err)
	}
	return resp, &env, nil
}

func expect(step string, resp *resty.Response, env *envelope, want int) error {
	if resp.StatusCode() != want {
		color.Red("✗ %s: status %d (want %d): %s", step, resp.StatusCode(), want, env.Message)
		return fmt.Errorf("%s failed", step)
	}
	color.Green("✓ %s (%d)", step, resp.StatusCode())
	return nil
}

func runGuest(client *resty.Client) error {
	color.Cyan("Guest flow against %s", client.BaseURL)

	body := map[string]string{"userInput": "I have a sore throat"}
	resp, env, err := call(client.R().SetBody(body), http.MethodPost, "/api/appointment/analyze")
	if err != nil {
		return err
	}
	if err := expect("first guest analysis", resp, env, http.StatusOK); err != nil {
		return err
	}

	resp, env, err = call(client.R().SetBody(body), http.MethodPost, "/api/appointment/analyze")
	if err != nil {
		return err
	}
	return expect("second guest analysis rejected", resp, env, http.StatusForbidden)
}

func runUser(client *resty.Client, message, followUp string) error {
	color.Cyan("User flow against %s", client.BaseURL)

	email := fmt.Sprintf("smoke-%s@example.com", uuid.NewString()[:8])
	resp, env, err := call(client.R().SetBody(map[string]string{
		"name": "Smoke Test", "email": email, "password": "smoke-password",
	}), http.MethodPost, "/api/auth/register")
	if err != nil {
		return err
	}
	if err := expect("register", resp, env, http.StatusCreated); err != nil {
		return err
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		return err
	}
	client.SetAuthToken(auth.Token)

	resp, env, err = call(client.R(), http.MethodGet, "/api/auth/verify")
	if err != nil {
		return err
	}
	if err := expect("verify", resp, env, http.StatusOK); err != nil {
		return err
	}

	resp, env, err = call(client.R().SetBody(map[string]string{"userInput": message}), http.MethodPost, "/api/appointment/analyze")
	if err != nil {
		return err
	}
	if err := expect("new session", resp, env, http.StatusOK); err != nil {
		return err
	}
	var first session
	if err := json.Unmarshal(env.Data, &first); err != nil {
		return err
	}
	color.White("  title=%q turns=%d diagnosis=%d", first.SessionTitle, len(first.Conversation), len(first.Diagnosis))

	resp, env, err = call(client.R().SetBody(map[string]string{"userInput": followUp, "sessionId": first.Id}), http.MethodPost, "/api/appointment/analyze")
	if err != nil {
		return err
	}
	if err := expect("follow-up", resp, env, http.StatusOK); err != nil {
		return err
	}
	var second session
	if err := json.Unmarshal(env.Data, &second); err != nil {
		return err
	}
	if len(second.Conversation) != len(first.Conversation)+2 {
		color.Red("✗ conversation grew by %d turns", len(second.Conversation)-len(first.Conversation))
		return fmt.Errorf("conversation check failed")
	}
	color.Green("✓ conversation grew by 2 turns")

	resp, env, err = call(client.R(), http.MethodGet, "/api/appointment/history")
	if err != nil {
		return err
	}
	if err := expect("history", resp, env, http.StatusOK); err != nil {
		return err
	}

	resp, env, err = call(client.R(), http.MethodGet, "/api/appointment/session/"+first.Id)
	if err != nil {
		return err
	}
	if err := expect("fetch session", resp, env, http.StatusOK); err != nil {
		return err
	}
	again, envAgain, err := call(client.R(), http.MethodGet, "/api/appointment/session/"+first.Id)
	if err != nil {
		return err
	}
	if err := expect("fetch session again", again, envAgain, http.StatusOK); err != nil {
		return err
	}
	if !bytes.Equal(env.Data, envAgain.Data) {
		color.Red("✗ repeated reads differ")
		return fmt.Errorf("idempotent read check failed")
	}
	color.Green("✓ repeated reads are identical")

	resp, env, err = call(client.R(), http.MethodGet, "/api/appointment/session/xyz")
	if err != nil {
		return err
	}
	return expect("malformed session id", resp, env, http.StatusBadRequest)
}
