package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/identity"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/pkg/client"
)

// version is overridden via -ldflags "-X main.version=...".
var version = "dev"

var (
	registryURL string
	cfgFile     string
	tokenFlag   string
	outFormat   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "custodyctl",
	Short: "Hardware custody registry CLI",
	Long: `custodyctl talks to a custody registry: it registers components,
records custody events, verifies authenticity and prints fleet reports.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(custodyHome())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("custody")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if registryURL == "" {
			registryURL = viper.GetString("registry_url")
		}
		if registryURL == "" {
			registryURL = "http://localhost:8080"
		}
		if tokenFlag == "" {
			tokenFlag = viper.GetString("token")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.custody/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&registryURL, "registry", "", "Custody registry URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Operator bearer token (default: ~/.custody/token if present)")
	rootCmd.PersistentFlags().StringVar(&outFormat, "format", "text", "Output format: text or json")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func custodyHome() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".custody")
}

// newClient builds an SDK client, attaching the operator token from --token,
// the config file, or the saved token file, in that order.
func newClient(opts ...client.Option) (*client.Client, error) {
	if tokenFlag != "" {
		return client.New(registryURL, append(opts, client.WithBearerToken(tokenFlag))...)
	}
	tokenPath := filepath.Join(custodyHome(), "token")
	if _, err := os.Stat(tokenPath); err == nil {
		return client.NewFromTokenFile(registryURL, tokenPath, opts...)
	}
	return client.New(registryURL, opts...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ── register ─────────────────────────────────────────────────────────────────

var (
	regID         string
	regName       string
	regMaker      string
	regDate       string
	regBatch      string
	regIndigenous bool
	regClearance  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new component",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		comp, err := c.Register(context.Background(), client.RegisterRequest{
			ID:                  regID,
			Name:                regName,
			Manufacturer:        regMaker,
			ManufacturingDate:   regDate,
			BatchID:             regBatch,
			IndigenousCertified: regIndigenous,
			SecurityClearance:   regClearance,
		})
		if err != nil {
			return fmt.Errorf("register component: %w", err)
		}

		if outFormat == "json" {
			return printJSON(os.Stdout, comp)
		}
		fmt.Printf("✓ Component registered\n\n")
		fmt.Printf("  ID:                %s\n", comp.ID)
		fmt.Printf("  Verification hash: %s\n", comp.VerificationHash)
		fmt.Printf("  Signature:         %s\n", comp.DigitalSignature)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&regID, "id", "", "Component id (e.g. SHAKTI-C-001)")
	registerCmd.Flags().StringVar(&regName, "name", "", "Component name")
	registerCmd.Flags().StringVar(&regMaker, "manufacturer", "", "Manufacturer key (e.g. IIT_MADRAS)")
	registerCmd.Flags().StringVar(&regDate, "date", time.Now().Format("2006-01-02"), "Manufacturing date (YYYY-MM-DD)")
	registerCmd.Flags().StringVar(&regBatch, "batch", "", "Batch id")
	registerCmd.Flags().BoolVar(&regIndigenous, "indigenous", false, "Component carries indigenous certification")
	registerCmd.Flags().StringVar(&regClearance, "clearance", "CONFIDENTIAL", "Security clearance: CONFIDENTIAL, SECRET or TOP_SECRET")

	_ = registerCmd.MarkFlagRequired("id")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("manufacturer")
	_ = registerCmd.MarkFlagRequired("batch")
}

// ── event ────────────────────────────────────────────────────────────────────

var (
	evStage      string
	evHandler    string
	evLocation   string
	evAction     string
	evVerifiedBy string
	evAt         string
)

var eventCmd = &cobra.Command{
	Use:   "event <component-id>",
	Short: "Append a custody event to a component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := client.EventRequest{
			Stage:      evStage,
			Handler:    evHandler,
			Location:   evLocation,
			Action:     evAction,
			VerifiedBy: evVerifiedBy,
		}
		if evAt != "" {
			ts, err := time.Parse(time.RFC3339, evAt)
			if err != nil {
				return fmt.Errorf("--at must be RFC3339: %w", err)
			}
			req.Timestamp = &ts
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		n, err := c.AppendEvent(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("append event: %w", err)
		}
		fmt.Printf("✓ %s event recorded for %s (%d custody events)\n", evStage, args[0], n)
		return nil
	},
}

func init() {
	eventCmd.Flags().StringVar(&evStage, "stage", "", "Custody stage (e.g. DISTRIBUTION)")
	eventCmd.Flags().StringVar(&evHandler, "handler", "", "Handling party")
	eventCmd.Flags().StringVar(&evLocation, "location", "", "Location of the event")
	eventCmd.Flags().StringVar(&evAction, "action", "", "Action performed")
	eventCmd.Flags().StringVar(&evVerifiedBy, "verified-by", "", "Verifier (defaults to the token operator)")
	eventCmd.Flags().StringVar(&evAt, "at", "", "Event time, RFC3339 (default: registry clock)")

	_ = eventCmd.MarkFlagRequired("stage")
	_ = eventCmd.MarkFlagRequired("handler")
	_ = eventCmd.MarkFlagRequired("location")
	_ = eventCmd.MarkFlagRequired("action")
}

// ── verify ───────────────────────────────────────────────────────────────────

// verifyRow holds the outcome of a single verification attempt.
type verifyRow struct {
	id     string
	result *client.VerificationResult
	err    error
}

var verifyCmd = &cobra.Command{
	Use:   "verify <component-id> [component-id] ...",
	Short: "Verify one or more components",
	Long: `verify checks fingerprint, manufacturer and custody chain integrity.

Multiple ids are verified concurrently and displayed as a table. The command
exits non-zero if any component is not authentic.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx := context.Background()
		rowsCh := make(chan verifyRow, len(args))
		for _, id := range args {
			go func() {
				res, err := c.Verify(ctx, id)
				rowsCh <- verifyRow{id: id, result: res, err: err}
			}()
		}

		byID := make(map[string]verifyRow, len(args))
		for range args {
			r := <-rowsCh
			byID[r.id] = r
		}
		ordered := make([]verifyRow, len(args))
		for i, id := range args {
			ordered[i] = byID[id]
		}

		if outFormat == "json" {
			results := make([]*client.VerificationResult, 0, len(ordered))
			for _, r := range ordered {
				if r.err != nil {
					return fmt.Errorf("verify %q: %w", r.id, r.err)
				}
				results = append(results, r.result)
			}
			if err := printJSON(os.Stdout, results); err != nil {
				return err
			}
		} else if err := printVerifyText(os.Stdout, ordered); err != nil {
			return err
		}

		for _, r := range ordered {
			if r.err != nil || !r.result.Authentic {
				return errors.New("one or more components failed verification")
			}
		}
		return nil
	},
}

func printVerifyText(w io.Writer, rows []verifyRow) error {
	if len(rows) == 1 && rows[0].err == nil {
		r := rows[0].result
		fmt.Fprintf(w, "Component:      %s\n", r.ComponentID)
		fmt.Fprintf(w, "Status:         %s\n", r.Status)
		if r.Error != "" {
			fmt.Fprintf(w, "Error:          %s\n", r.Error)
			return nil
		}
		fmt.Fprintf(w, "Authentic:      %t\n", r.Authentic)
		fmt.Fprintf(w, "Indigenous:     %t\n", r.Indigenous)
		fmt.Fprintf(w, "Manufacturer:   %s (%s)\n", r.Manufacturer, r.ManufacturerLocation)
		fmt.Fprintf(w, "Clearance:      %s\n", r.SecurityClearance)
		fmt.Fprintf(w, "Custody events: %d\n", r.CustodyEvents)
		fmt.Fprintf(w, "Last update:    %s\n", r.LastUpdate)
		if len(r.FailedChecks) > 0 {
			fmt.Fprintf(w, "Failed checks:  %s\n", strings.Join(r.FailedChecks, ", "))
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tAUTHENTIC\tEVENTS\tFAILED\tERROR")
	for _, r := range rows {
		if r.err != nil {
			fmt.Fprintf(tw, "%s\t\t\t\t\t%s\n", r.id, r.err.Error())
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%s\t%s\n",
			r.id, r.result.Status, r.result.Authentic, r.result.CustodyEvents,
			strings.Join(r.result.FailedChecks, ","), r.result.Error)
	}
	return tw.Flush()
}

// ── track ────────────────────────────────────────────────────────────────────

var trackCmd = &cobra.Command{
	Use:   "track <component-id>",
	Short: "Print a component's full custody chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		comp, err := c.Get(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("track %q: %w", args[0], err)
		}
		if outFormat == "json" {
			return printJSON(os.Stdout, comp)
		}
		return printTrack(os.Stdout, comp)
	},
}

func printTrack(w io.Writer, comp *client.Component) error {
	fmt.Fprintf(w, "%s  %s\n", comp.ID, comp.Name)
	fmt.Fprintf(w, "Manufacturer: %s  Batch: %s  Made: %s  Clearance: %s\n\n",
		comp.Manufacturer, comp.BatchID, comp.ManufacturingDate, comp.SecurityClearance)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIMESTAMP\tSTAGE\tHANDLER\tLOCATION\tACTION\tVERIFIED BY")
	for i, ev := range comp.CustodyChain {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, ev.Timestamp.Format(time.RFC3339), ev.Stage, ev.Handler, ev.Location, ev.Action, ev.VerifiedBy)
	}
	return tw.Flush()
}

// ── list ─────────────────────────────────────────────────────────────────────

var (
	listManufacturer string
	listMinClearance string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered components",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		comps, err := c.List(context.Background(), client.ListFilter{
			Manufacturer: listManufacturer,
			MinClearance: listMinClearance,
		})
		if err != nil {
			return fmt.Errorf("list components: %w", err)
		}
		if outFormat == "json" {
			return printJSON(os.Stdout, comps)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tMANUFACTURER\tCLEARANCE\tINDIGENOUS\tEVENTS")
		for _, comp := range comps {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%d\n",
				comp.ID, comp.Name, comp.Manufacturer, comp.SecurityClearance,
				comp.IndigenousCertified, len(comp.CustodyChain))
		}
		return tw.Flush()
	},
}

func init() {
	listCmd.Flags().StringVar(&listManufacturer, "manufacturer", "", "Only components from this manufacturer key")
	listCmd.Flags().StringVar(&listMinClearance, "min-clearance", "", "Only components at or above this clearance")
}

// ── report ───────────────────────────────────────────────────────────────────

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the fleet security report",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		rep, err := c.Report(context.Background())
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		if outFormat == "json" {
			return printJSON(os.Stdout, rep)
		}
		return printReport(os.Stdout, rep)
	},
}

func printReport(w io.Writer, rep *client.Report) error {
	fmt.Fprintf(w, "Report %s  (%s)\n\n", rep.ReportID, rep.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Components:   %d\n", rep.Summary.TotalComponents)
	fmt.Fprintf(w, "Verified:     %d (%s)\n", rep.Summary.VerifiedComponents, rep.Summary.VerificationRate)
	fmt.Fprintf(w, "Indigenous:   %d (%s)\n", rep.Summary.IndigenousComponents, rep.Summary.IndigenousRate)
	fmt.Fprintf(w, "Integrity:    %s\n", rep.ChainIntegrity)
	fmt.Fprintf(w, "Compliance:   %s\n\n", rep.ComplianceStatus)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MANUFACTURER\tCOMPONENTS")
	for _, name := range slices.Sorted(maps.Keys(rep.ManufacturerBreakdown)) {
		fmt.Fprintf(tw, "%s\t%d\n", name, rep.ManufacturerBreakdown[name])
	}
	fmt.Fprintln(tw, "\t")
	fmt.Fprintln(tw, "CLEARANCE\tCOMPONENTS")
	for _, level := range slices.Sorted(maps.Keys(rep.SecurityClearanceDistribution)) {
		fmt.Fprintf(tw, "%s\t%d\n", level, rep.SecurityClearanceDistribution[level])
	}
	return tw.Flush()
}

// ── simulate ─────────────────────────────────────────────────────────────────

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the four-stage deployment simulation over the fleet",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.Simulate(context.Background())
		if err != nil {
			return fmt.Errorf("simulate: %w", err)
		}
		if outFormat == "json" {
			return printJSON(os.Stdout, res)
		}
		fmt.Printf("✓ Simulated deployment for %d components (%d events)\n", res.Processed, res.EventsAppended)
		for _, id := range res.Skipped {
			fmt.Printf("  skipped: %s\n", id)
		}
		return nil
	},
}

// ── ledger ───────────────────────────────────────────────────────────────────

var ledgerVerify bool

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the trust ledger tip, or verify the whole chain with --verify",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx := context.Background()

		if ledgerVerify {
			valid, reason, err := c.LedgerVerify(ctx)
			if err != nil {
				return fmt.Errorf("ledger verify: %w", err)
			}
			if !valid {
				return fmt.Errorf("trust ledger is BROKEN: %s", reason)
			}
			fmt.Println("✓ Trust ledger intact")
			return nil
		}

		ov, err := c.Ledger(ctx)
		if err != nil {
			return fmt.Errorf("ledger: %w", err)
		}
		if outFormat == "json" {
			return printJSON(os.Stdout, ov)
		}
		fmt.Printf("Entries: %d\nRoot:    %s\n", ov.Entries, ov.Root)
		return nil
	},
}

func init() {
	ledgerCmd.Flags().BoolVar(&ledgerVerify, "verify", false, "Re-walk the ledger and report its integrity")
}

// ── token ────────────────────────────────────────────────────────────────────

var (
	tokenSecret   string
	tokenOperator string
	tokenTTL      time.Duration
	tokenSave     bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator token from the registry's shared secret",
	Long: `token signs an operator bearer token locally with the same secret the
registry is configured with (registry.operator_secret). Use --save to store
it in ~/.custody/token, where other commands pick it up automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := tokenSecret
		if secret == "" {
			secret = viper.GetString("operator_secret")
		}
		issuer, err := identity.NewOperatorIssuer(secret, identity.DefaultIssuer, tokenTTL)
		if err != nil {
			return err
		}
		tok, err := issuer.Issue(tokenOperator, []string{identity.ScopeCustodyWrite})
		if err != nil {
			return err
		}

		if !tokenSave {
			fmt.Println(tok)
			return nil
		}
		path := filepath.Join(custodyHome(), "token")
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(tok+"\n"), 0o600); err != nil {
			return fmt.Errorf("write token: %w", err)
		}
		fmt.Printf("✓ Token for %s saved to %s (expires in %s)\n", tokenOperator, path, issuer.TTL())
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Shared operator secret (default: operator_secret from config)")
	tokenCmd.Flags().StringVar(&tokenOperator, "operator", "", "Operator name recorded as verified_by")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "Token lifetime")
	tokenCmd.Flags().BoolVar(&tokenSave, "save", false, "Save the token to ~/.custody/token")

	_ = tokenCmd.MarkFlagRequired("operator")
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the custodyctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("custodyctl %s\n", version)
	},
}
