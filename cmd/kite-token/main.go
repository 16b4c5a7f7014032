// Command kite-token generates a Zerodha Kite Connect access token: it
// prints the login URL, waits for the request token from the redirect, and
// exchanges it for an access token to put in .env.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	reader := bufio.NewReader(os.Stdin)

	apiKey := os.Getenv("ZERODHA_API_KEY")
	if apiKey == "" {
		apiKey = prompt(reader, "Enter your Zerodha API Key: ")
	}
	apiSecret := os.Getenv("ZERODHA_API_SECRET")
	if apiSecret == "" {
		apiSecret = prompt(reader, "Enter your Zerodha API Secret: ")
	}
	if apiKey == "" || apiSecret == "" {
		log.Fatal("API key and secret are required")
	}

	kc := kiteconnect.New(apiKey)

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("ZERODHA KITE CONNECT ACCESS TOKEN GENERATOR")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
	fmt.Println("1. Open this URL and log in with your Zerodha credentials:")
	fmt.Printf("   %s\n\n", kc.GetLoginURL())
	fmt.Println("2. After authorizing, you are redirected to a URL containing")
	fmt.Println("   a request_token parameter. Paste that token below.")
	fmt.Println()

	requestToken := prompt(reader, "Enter the request token: ")
	if requestToken == "" {
		log.Fatal("Request token is required")
	}

	session, err := kc.GenerateSession(requestToken, apiSecret)
	if err != nil {
		log.Fatal("Failed to generate session: ", err)
	}

	fmt.Println()
	fmt.Println("Success! Add this line to your .env file:")
	fmt.Printf("ZERODHA_ACCESS_TOKEN=%s\n", session.AccessToken)
	fmt.Println()
	fmt.Println("Note: access tokens expire daily; rerun this tool each trading day.")
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line)
}
