package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile settings",
	Long:  "Commands for viewing and updating your profile",
}

var getProfileCmd = &cobra.Command{
	Use:   "get",
	Short: "Get your current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getProfile()
	},
}

var updateProfileCmd = &cobra.Command{
	Use:   "set",
	Short: "Update your display name, bio, or avatar",
	Long: `Update profile fields. Only the flags you pass are changed.

Examples:
  sharespace profile set --display-name "Alice C."
  sharespace profile set --bio "photographer, mostly film"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]interface{}{}
		if cmd.Flags().Changed("display-name") {
			v, _ := cmd.Flags().GetString("display-name")
			payload["display_name"] = v
		}
		if cmd.Flags().Changed("bio") {
			v, _ := cmd.Flags().GetString("bio")
			payload["bio"] = v
		}
		if cmd.Flags().Changed("avatar-url") {
			v, _ := cmd.Flags().GetString("avatar-url")
			payload["avatar_url"] = v
		}
		if len(payload) == 0 {
			return fmt.Errorf("nothing to update: pass --display-name, --bio, or --avatar-url")
		}
		return updateProfile(payload)
	},
}

func init() {
	profileCmd.AddCommand(getProfileCmd)
	profileCmd.AddCommand(updateProfileCmd)

	updateProfileCmd.Flags().String("display-name", "", "New display name")
	updateProfileCmd.Flags().String("bio", "", "New bio text")
	updateProfileCmd.Flags().String("avatar-url", "", "New avatar image URL")
}

func getProfile() error {
	req, err := http.NewRequest("GET", apiURL+"/api/v1/auth/me", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if output == "json" {
		fmt.Println(string(respBody))
		return nil
	}

	var result struct {
		User struct {
			Username    string `json:"username"`
			DisplayName string `json:"display_name"`
			Email       string `json:"email"`
			Bio         string `json:"bio"`
			UploadCount int    `json:"upload_count"`
		} `json:"user"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Username:     %s\n", result.User.Username)
	fmt.Printf("Display name: %s\n", result.User.DisplayName)
	fmt.Printf("Email:        %s\n", result.User.Email)
	fmt.Printf("Posts:        %d\n", result.User.UploadCount)
	if result.User.Bio != "" {
		fmt.Printf("Bio:          %s\n", result.User.Bio)
	}
	return nil
}

func updateProfile(payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest("PATCH", apiURL+"/api/v1/users/me", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	fmt.Println("Profile updated")
	return nil
}
