package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"vkinder/pkg/tokenbox"
)

// Prints a random value for oauth.tokenSecret and checks it seals and opens a token.
func main() {
	size := flag.Int("bytes", 32, "secret length in bytes")
	flag.Parse()

	buf := make([]byte, *size)
	if _, err := rand.Read(buf); err != nil {
		fmt.Fprintf(os.Stderr, "generate secret: %v\n", err)
		os.Exit(1)
	}
	secret := hex.EncodeToString(buf)

	box := tokenbox.New(secret)
	sealed, err := box.Seal("sample-token")
	if err != nil {
		fmt.Fprintf(os.Stderr, "seal sample token: %v\n", err)
		os.Exit(1)
	}
	if plain, err := box.Open(sealed); err != nil || plain != "sample-token" {
		fmt.Fprintf(os.Stderr, "open sample token failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("secret: %s\n", secret)
	fmt.Println("\nput it into oauth.tokenSecret (or TOKEN_SECRET); changing it later makes stored tokens unreadable")
}
