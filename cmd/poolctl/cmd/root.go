// Package cmd wires the poolctl command tree: offline inspection helpers for
// pool records, derived addresses, and the fee schedule.
package cmd

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/openalpha/signalpool/metrics"
	"github.com/openalpha/signalpool/pkg/solkey"
	"github.com/openalpha/signalpool/x/pool/keeper"
	"github.com/openalpha/signalpool/x/pool/types"
)

// NewRootCmd creates the poolctl root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "poolctl",
		Short:         "Inspection tooling for pooled trading vehicles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		DecodeCmd(),
		DeriveCmd(),
		SimulateFeesCmd(),
		ServeMetricsCmd(),
	)
	return rootCmd
}

// DecodeCmd dumps a pool record image.
func DecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [record-file]",
		Short: "Decode a pool record image and print its header, whitelist, and assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if len(data) < types.HeaderLen {
				return fmt.Errorf("record is %d bytes, want at least %d", len(data), types.HeaderLen)
			}
			header, err := types.UnpackHeaderUnchecked(data[:types.HeaderLen])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status:               %s\n", header.Status)
			fmt.Fprintf(out, "market program:       %s\n", header.MarketProgram)
			fmt.Fprintf(out, "seed:                 %s\n", hex.EncodeToString(header.Seed[:]))
			fmt.Fprintf(out, "signal provider:      %s\n", header.SignalProvider)
			fmt.Fprintf(out, "fee ratio:            %d/65536\n", header.FeeRatio)
			fmt.Fprintf(out, "fee period:           %ds\n", header.FeeCollectionPeriod)
			fmt.Fprintf(out, "last fee collection:  %d\n", header.LastFeeCollection)

			if !header.Status.Initialized() {
				return nil
			}
			assetOffset := types.AssetOffset(header.NumberOfMarkets)
			if len(data) < assetOffset {
				return fmt.Errorf("record truncated: %d bytes, whitelist needs %d", len(data), assetOffset)
			}
			fmt.Fprintf(out, "markets:              %d\n", header.NumberOfMarkets)
			for i := uint16(0); i < header.NumberOfMarkets; i++ {
				market, err := types.MarketAt(data[types.HeaderLen:assetOffset], i)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  [%d] %s\n", i, market)
			}
			assets := types.UnpackAssets(data[assetOffset:])
			fmt.Fprintf(out, "assets:               %d\n", len(assets))
			for i, asset := range assets {
				fmt.Fprintf(out, "  [%d] %s\n", i, asset.Mint)
			}
			return nil
		},
	}
}

// DeriveCmd prints the pool and mint identities for a seed.
func DeriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive [program-id] [seed-hex]",
		Short: "Derive the pool and share mint identities for a seed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := solkey.FromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid program id: %w", err)
			}
			seedBytes, err := hex.DecodeString(args[1])
			if err != nil || len(seedBytes) != 32 {
				return fmt.Errorf("seed must be 32 hex-encoded bytes")
			}

			pool, err := solkey.CreateProgramAddress([][]byte{seedBytes}, programID)
			if err != nil {
				return fmt.Errorf("pool address does not derive for this seed: %w", err)
			}
			mint, err := solkey.CreateProgramAddress([][]byte{seedBytes, {types.MintBumpSeed}}, programID)
			if err != nil {
				return fmt.Errorf("mint address does not derive for this seed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pool: %s\n", pool)
			fmt.Fprintf(out, "mint: %s\n", mint)
			return nil
		},
	}
}

// SimulateFeesCmd previews a fee collection.
func SimulateFeesCmd() *cobra.Command {
	var (
		feeRatio uint16
		supply   uint64
		cycles   uint64
	)
	simCmd := &cobra.Command{
		Use:   "simulate-fees",
		Short: "Preview the shares a fee collection would mint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cycles == 0 {
				return fmt.Errorf("cycles must be positive")
			}
			feeless := uint64(uint16(keeper.PowQ16(uint32(^feeRatio), cycles)))
			collect := uint64(^uint16(feeless))
			tokens, err := keeper.MulDiv(collect, supply, feeless)
			if err != nil {
				return err
			}
			spFee := tokens / 2
			platformFee := tokens / 4

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "shares minted:    %d\n", tokens)
			fmt.Fprintf(out, "signal provider:  %d\n", spFee)
			fmt.Fprintf(out, "platform:         %d\n", platformFee)
			fmt.Fprintf(out, "buy and burn:     %d\n", tokens-platformFee-spFee)
			return nil
		},
	}
	simCmd.Flags().Uint16Var(&feeRatio, "fee-ratio", 0, "per-period fee ratio in 1/65536 units")
	simCmd.Flags().Uint64Var(&supply, "supply", types.InitialShareSupply, "current share supply")
	simCmd.Flags().Uint64Var(&cycles, "cycles", 1, "whole fee periods to collect")
	return simCmd
}

// ServeMetricsCmd exposes the Prometheus metrics endpoint.
func ServeMetricsCmd() *cobra.Command {
	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve the Prometheus metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics.GetCollector()
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			fmt.Fprintf(cmd.OutOrStdout(), "serving metrics on %s/metrics\n", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":9464", "listen address")
	return serveCmd
}
