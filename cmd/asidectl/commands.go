package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/unkn0wn-root/cacheaside"
)

var expirationFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "ttl",
		Usage: "absolute expiration in seconds from the write",
	},
	&cli.DurationFlag{
		Name:  "sliding",
		Usage: "sliding expiration window",
	},
}

var cmdGet = &cli.Command{
	Name:      "get",
	Usage:     "print the cached value of a key",
	ArgsUsage: `<key>`,
	Action:    runGet,
}

var cmdSet = &cli.Command{
	Name:      "set",
	Usage:     "store a JSON value under a key",
	ArgsUsage: `<key> <json>`,
	Flags:     expirationFlags,
	Action:    runSet,
}

var cmdExists = &cli.Command{
	Name:      "exists",
	Usage:     "report whether a key holds an entry",
	ArgsUsage: `<key>`,
	Action:    runExists,
}

var cmdDel = &cli.Command{
	Name:      "del",
	Aliases:   []string{"rm"},
	Usage:     "remove a key",
	ArgsUsage: `<key>`,
	Action:    runDel,
}

var cmdFetch = &cli.Command{
	Name:      "fetch",
	Usage:     "return the cached value of a key, or GET it from a URL and cache it",
	ArgsUsage: `<key> <url>`,
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "HTTP timeout for the origin request",
			Value: 10 * time.Second,
		},
	}, expirationFlags...),
	Action: runFetch,
}

func keyArg(cctx *cli.Context, extra int) (string, error) {
	if cctx.Args().Len() != 1+extra {
		return "", fmt.Errorf("expected %d argument(s), got %d", 1+extra, cctx.Args().Len())
	}
	return cctx.Args().First(), nil
}

// entryOptions maps --ttl and --sliding onto EntryOptions.
func entryOptions(cctx *cli.Context) (cacheaside.EntryOptions, error) {
	ttl := cctx.Int("ttl")
	sliding := cctx.Duration("sliding")
	switch {
	case ttl != 0 && sliding != 0:
		exp := &cacheaside.Expiration{
			AbsoluteExpirationRelativeToNow: time.Duration(ttl) * time.Second,
			SlidingExpiration:               sliding,
		}
		return cacheaside.EntryOptions{Expiration: exp}, nil
	case sliding != 0:
		exp, err := cacheaside.SlidingFor(sliding)
		return cacheaside.EntryOptions{Expiration: exp}, err
	}
	return cacheaside.EntryOptions{AbsoluteExpirationSeconds: ttl}, nil
}

func printValue(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func runGet(cctx *cli.Context) error {
	key, err := keyArg(cctx, 0)
	if err != nil {
		return err
	}
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	defer e.Close(cctx)

	v, ok, err := e.cache.Get(cctx.Context, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key %q not found", key)
	}
	return printValue(cctx.App.Writer, v)
}

func runSet(cctx *cli.Context) error {
	key, err := keyArg(cctx, 1)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal([]byte(cctx.Args().Get(1)), &v); err != nil {
		return fmt.Errorf("value must be JSON: %w", err)
	}
	opts, err := entryOptions(cctx)
	if err != nil {
		return err
	}
	exp := opts.Expiration
	if opts.AbsoluteExpirationSeconds != 0 {
		if exp, err = cacheaside.AbsoluteAfter(opts.AbsoluteExpirationSeconds); err != nil {
			return err
		}
	}

	e, err := setup(cctx)
	if err != nil {
		return err
	}
	defer e.Close(cctx)
	return e.cache.Set(cctx.Context, key, v, exp)
}

func runExists(cctx *cli.Context) error {
	key, err := keyArg(cctx, 0)
	if err != nil {
		return err
	}
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	defer e.Close(cctx)

	ok, err := e.cache.Exists(cctx.Context, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cctx.App.Writer, ok)
	return nil
}

func runDel(cctx *cli.Context) error {
	key, err := keyArg(cctx, 0)
	if err != nil {
		return err
	}
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	defer e.Close(cctx)
	return e.cache.Remove(cctx.Context, key)
}

func runFetch(cctx *cli.Context) error {
	key, err := keyArg(cctx, 1)
	if err != nil {
		return err
	}
	url := cctx.Args().Get(1)
	opts, err := entryOptions(cctx)
	if err != nil {
		return err
	}
	e, err := setup(cctx)
	if err != nil {
		return err
	}
	defer e.Close(cctx)

	client := &http.Client{Timeout: cctx.Duration("timeout")}
	r := <-e.cache.GetOrPopulateAsync(cctx.Context, key, httpLoader(client, url), opts)
	if r.Err != nil {
		return r.Err
	}
	e.log.Sugar().Debugw("fetched", "key", key, "hit", r.Hit)
	return printValue(cctx.App.Writer, r.Value)
}

// httpLoader GETs url and decodes the JSON body.
func httpLoader(client *http.Client, url string) cacheaside.Loader[any] {
	return func(ctx context.Context) (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("origin returned %s", resp.Status)
		}
		var v any
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return nil, fmt.Errorf("decoding origin response: %w", err)
		}
		return v, nil
	}
}
