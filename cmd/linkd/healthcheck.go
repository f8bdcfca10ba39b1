package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/traefik/paerser/cli"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func healthcheckCmd() *cli.Command {
	return &cli.Command{
		Name:          "healthcheck",
		Description:   "Perform a health check",
		Configuration: nil,
		Resources:     nil,
		AllowArg:      true,
		Run: func(args []string) error {
			appURL := os.Getenv("LINKD_APPURL")

			if len(args) > 0 {
				appURL = args[0]
			}

			if appURL == "" {
				return errors.New("LINKD_APPURL is not set and no argument was provided")
			}

			client := http.Client{
				Timeout: 30 * time.Second,
			}

			req, err := http.NewRequest("GET", appURL+"/api/health", nil)

			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}

			resp, err := client.Do(req)

			if err != nil {
				return fmt.Errorf("failed to perform request: %w", err)
			}

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("service is not healthy, got: %s", resp.Status)
			}

			defer resp.Body.Close()

			var health healthResponse

			body, err := io.ReadAll(resp.Body)

			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			err = json.Unmarshal(body, &health)

			if err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}

			fmt.Printf("Status: %s\n", health.Status)
			fmt.Printf("Message: %s\n", health.Message)

			return nil
		},
	}
}
