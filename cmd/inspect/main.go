// inspect classifies a raw account buffer from disk or stdin and prints the
// decoded entity as JSON. Handy when a scan reports unrecognized accounts.
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"blocksd/pkg/classify"
)

func main() {
	var path string
	var b64 bool
	flag.StringVar(&path, "file", "-", "account data file, or - for stdin")
	flag.BoolVar(&b64, "base64", true, "input is base64 (as returned by the RPC node)")
	flag.Parse()

	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(2)
	}

	data := raw
	if b64 {
		data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode base64: %v\n", err)
			os.Exit(2)
		}
	}

	res, ok := classify.Classify(data)
	if !ok {
		fmt.Fprintln(os.Stderr, "unrecognized: no layout accepted the buffer")
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(struct {
		Kind   string `json:"kind"`
		Entity any    `json:"entity"`
	}{Kind: string(res.Kind), Entity: res.Entity}, "", "  ")
	fmt.Println(string(out))
}
