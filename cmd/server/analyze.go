package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skufu/clinicai/internal/config"
)

type analyzer func(ctx context.Context, eng engines, dec *json.Decoder) (any, error)

var analyzers = map[string]analyzer{
	"diagnosis": func(ctx context.Context, eng engines, dec *json.Decoder) (any, error) {
		var req diagnosisRequest
		if err := decodeRequest(dec, &req); err != nil {
			return nil, err
		}
		return eng.diagnose(ctx, req)
	},
	"interactions": func(_ context.Context, eng engines, dec *json.Decoder) (any, error) {
		var req interactionRequest
		if err := decodeRequest(dec, &req); err != nil {
			return nil, err
		}
		return eng.checkInteractions(req), nil
	},
	"risk": func(_ context.Context, eng engines, dec *json.Decoder) (any, error) {
		var req riskRequest
		if err := decodeRequest(dec, &req); err != nil {
			return nil, err
		}
		return eng.scoreRisk(req), nil
	},
	"no-show": func(_ context.Context, eng engines, dec *json.Decoder) (any, error) {
		var req noShowRequest
		if err := decodeRequest(dec, &req); err != nil {
			return nil, err
		}
		return eng.predictNoShow(req), nil
	},
	"trends": func(_ context.Context, eng engines, dec *json.Decoder) (any, error) {
		var req trendRequest
		if err := decodeRequest(dec, &req); err != nil {
			return nil, err
		}
		return eng.analyzeTrends(req)
	},
}

func analyzerKinds() []string {
	kinds := make([]string, 0, len(analyzers))
	for k := range analyzers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func decodeRequest(dec *json.Decoder, req any) error {
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func analyzeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:       "analyze <kind>",
		Short:     "Run one engine on a JSON request and print the result",
		Long:      "Kinds: " + strings.Join(analyzerKinds(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: analyzerKinds(),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, ok := analyzers[args[0]]
			if !ok {
				return fmt.Errorf("unknown kind %q (want one of %s)", args[0], strings.Join(analyzerKinds(), ", "))
			}

			var in io.Reader = cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open request: %w", err)
				}
				defer f.Close()
				in = f
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			eng, err := buildEngines(cfg, zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger())
			if err != nil {
				return err
			}

			result, err := run(cmd.Context(), eng, json.NewDecoder(in))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the request from this file instead of stdin")
	return cmd
}
