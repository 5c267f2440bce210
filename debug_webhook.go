package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/daemon"
)

// Sends a signed push event to a running blogpub daemon. Handy for checking
// webhook wiring without a real forge on the other end:
//
//	go run debug_webhook.go -secret s3cret -ref refs/heads/master
func main() {
	url := flag.String("url", "http://127.0.0.1:8153/hooks/push", "daemon push endpoint")
	secret := flag.String("secret", "", "webhook secret (empty sends an unsigned request)")
	ref := flag.String("ref", "refs/heads/master", "pushed ref")
	message := flag.String("message", "", "commit message override for the publish")
	flag.Parse()

	payload, err := json.Marshal(daemon.PushEvent{Ref: *ref, Message: *message})
	if err != nil {
		log.Fatalf("marshal payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *secret != "" {
		mac := hmac.New(sha256.New, []byte(*secret))
		mac.Write(payload)
		req.Header.Set(daemon.SignatureHeader, "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("send push event: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	fmt.Printf("%s\n%s\n", resp.Status, bytes.TrimSpace(body))
}
