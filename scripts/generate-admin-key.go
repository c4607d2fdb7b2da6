// Command generate-admin-key creates an admin key for the statistics
// endpoint. It prints the plaintext key once and the Argon2id hash to put
// in ADMIN_KEY_HASH. The plaintext is never stored anywhere.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mailgate/mailgate/internal/auth"
)

type output struct {
	Key  string `json:"key"`
	Hash string `json:"hash"`
}

func main() {
	format := flag.String("format", "plain", "Output format: plain or json")
	flag.Parse()

	generated, err := auth.GenerateAdminKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate admin key:", err)
		os.Exit(1)
	}

	out := output{
		Key:  generated.Plaintext,
		Hash: generated.Hash,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println("Admin key (store securely, shown once):")
		fmt.Println(out.Key)
		fmt.Println()
		fmt.Println("ADMIN_KEY_HASH:")
		fmt.Println(out.Hash)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
