package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
)

// decodedURL es la salida de "url decode".
type decodedURL struct {
	FindFilter      lf.FindFilter       `json:"find_filter"`
	AttributeFilter lf.AttributeFilter  `json:"attribute_filter"`
	Query           string              `json:"query"`
	QueryParams     map[string][]string `json:"query_params"`
}

func newURLCmd(codec *lf.Codec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Translate list URLs to filters and back",
	}
	cmd.AddCommand(newURLDecodeCmd(codec), newURLEncodeCmd(codec))
	return cmd
}

func newURLDecodeCmd(codec *lf.Codec) *cobra.Command {
	var defaultSort string

	cmd := &cobra.Command{
		Use:   "decode <url-or-query>",
		Short: "Print the find filter, attribute filter and canonical query of a list URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseQueryArg(args[0])
			if err != nil {
				return err
			}

			model := codec.New(params, defaultSort, nil)
			out := decodedURL{
				FindFilter:      model.ToFindFilter(),
				AttributeFilter: model.ToAttributeFilter(),
				Query:           model.ToQueryString(),
				QueryParams:     model.ToQueryParameters(),
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&defaultSort, "default-sort", "", "sort field used when the URL has none")
	return cmd
}

func newURLEncodeCmd(codec *lf.Codec) *cobra.Command {
	var (
		q         string
		page      int
		perPage   int
		sortBy    string
		desc      bool
		disp      int
		criterion []string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build the canonical query string of a list filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if q != "" {
				params.Set(lf.ParamSearch, q)
			}
			if page > 0 {
				params.Set(lf.ParamPage, strconv.Itoa(page))
			}
			if perPage > 0 {
				params.Set(lf.ParamPerPage, strconv.Itoa(perPage))
			}
			if sortBy != "" {
				params.Set(lf.ParamSortBy, sortBy)
			}
			if desc {
				params.Set(lf.ParamSortDir, "desc")
			}
			if cmd.Flags().Changed("disp") {
				params.Set(lf.ParamDisplay, strconv.Itoa(disp))
			}
			for _, c := range criterion {
				if !json.Valid([]byte(c)) {
					return fmt.Errorf("criterion is not valid JSON: %s", c)
				}
				params.Add(lf.ParamCriteria, c)
			}

			model := codec.New(params, "", nil)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), model.ToQueryString())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&q, "q", "", "search term")
	f.IntVar(&page, "page", 0, "page number (1-based)")
	f.IntVar(&perPage, "per-page", 0, "items per page")
	f.StringVar(&sortBy, "sort", "", "sort field, or random / random_<seed>")
	f.BoolVar(&desc, "desc", false, "sort descending")
	f.IntVar(&disp, "disp", 0, "display mode code")
	f.StringArrayVar(&criterion, "criterion", nil, `criterion as JSON, e.g. '{"type":"resolution","value":"4k"}' (repeatable)`)
	return cmd
}

// parseQueryArg acepta una URL completa, "?a=b" o "a=b".
func parseQueryArg(arg string) (url.Values, error) {
	raw := arg
	if strings.Contains(arg, "://") {
		u, err := url.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid url: %w", err)
		}
		raw = u.RawQuery
	} else if i := strings.IndexByte(arg, '?'); i >= 0 {
		raw = arg[i+1:]
	}

	params, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return params, nil
}
