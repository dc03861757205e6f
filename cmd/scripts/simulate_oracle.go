package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Posts a randomness fulfillment the way the oracle would. Useful against a
// server running with Oracle.Mock, where no real oracle will ever call back.
func main() {
	apiURL := flag.String("api", "http://localhost:4000", "base URL of the API server")
	requestID := flag.String("request", "", "request id to fulfill (required)")
	seedHex := flag.String("seed", "", "32-byte hex seed; random when omitted")
	callbackKey := flag.String("key", os.Getenv("ORACLE_CALLBACK_KEY"), "oracle callback key")
	flag.Parse()

	if *requestID == "" {
		fmt.Fprintln(os.Stderr, "missing -request")
		flag.Usage()
		os.Exit(2)
	}

	seed := *seedHex
	if seed == "" {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate seed: %v\n", err)
			os.Exit(1)
		}
		seed = hex.EncodeToString(raw)
		fmt.Printf("generated seed: %s\n", seed)
	}

	body, err := json.Marshal(map[string]string{
		"requestId": *requestID,
		"seed":      seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode body: %v\n", err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/oracle/fulfillments", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Oracle-Key", *callbackKey)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fulfillment request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s: %s\n", resp.Status, respBody)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
