// Command mydig resolves A/NS/MX questions iteratively from the DNS root,
// without DNSSEC validation.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"dnswalk"
)

func main() {
	hintsPath := flag.String("hints", "root_server_ipv4s.txt", "path to a root hints file, one IPv4 per line")
	inputPath := flag.String("input", "mydig_input.txt", "batch query file, one '<name> <type>' per line")
	outputPath := flag.String("output", "mydig_output.txt", "batch output file")
	flag.Parse()

	roots, err := dnswalk.LoadRootServers(*hintsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mydig: loading root hints:", err)
		os.Exit(1)
	}

	r := dnswalk.NewResolver(roots, dnswalk.NewKeyStore(nil))
	r.Logger = log.New(os.Stderr, "", log.LstdFlags)
	ctx := context.Background()

	if args := flag.Args(); len(args) == 2 {
		resp := resolveOne(ctx, r, args[0], args[1])
		fmt.Print(dnswalk.RenderResponse(resp, false))
		return
	}

	if err := runBatch(ctx, r, *inputPath, *outputPath); err != nil {
		fmt.Fprintln(os.Stderr, "mydig:", err)
		os.Exit(1)
	}
}

func resolveOne(ctx context.Context, r *dnswalk.Resolver, name, qtype string) *dnswalk.Response {
	resp, err := r.Resolve(ctx, dnswalk.Request{Name: name, Type: strings.ToUpper(qtype)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mydig: resolving %s %s: %s\n", name, qtype, err)
	}
	return resp
}

func runBatch(ctx context.Context, r *dnswalk.Resolver, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		resp := resolveOne(ctx, r, fields[0], fields[1])
		if _, err := out.WriteString(dnswalk.RenderResponse(resp, false)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
