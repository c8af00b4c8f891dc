// Package cli wires configuration, stores and inference into the sheetsync
// command tree.
package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nconklindev/sheetsync/internal/config"
	"github.com/nconklindev/sheetsync/internal/logging"
	"github.com/nconklindev/sheetsync/internal/pathfind"
)

// BuildInfo is stamped into the binary at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
	finder     *pathfind.Finder
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the interactive converter.
func NewRootCmd(info BuildInfo) *cobra.Command {
	a := &app{v: viper.New(), finder: pathfind.New()}

	rootCmd := &cobra.Command{
		Use:   "sheetsync",
		Short: "Move tables between spreadsheets and typed files",
		Long: `sheetsync downloads worksheets, workbooks, CSV files and database tables,
infers integer, float and date columns, and uploads tables back.`,
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
	rootCmd.SetVersionTemplate("sheetsync {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Configuration file path")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("store", config.StoreSheets, "Store kind (sheets, xlsx, csv, sql, feather, parquet)")
	flags.String("path", "", "Workbook file or table directory for file-based stores")
	flags.String("spreadsheet", "", "Google Sheets spreadsheet ID")
	flags.String("credentials", "service_account.json", "Service account key file, relative paths resolve in the credentials directory")
	flags.String("sql-driver", "sqlite", "SQL driver (sqlite, mysql, postgres)")
	flags.String("dsn", "", "SQL data source name")
	flags.String("policy", "fast", "Inference policy (fast, loose)")
	flags.String("mode", "best-effort", "Inference mode (best-effort, strict)")
	flags.Float64("threshold", 0.8, "Share of rows that must parse before a column is converted")
	flags.StringSlice("date-formats", nil, "strftime date formats tried in order (default %Y-%m-%d,%Y%m%d,%Y/%m/%d)")
	flags.Int("header-row", 0, "0-based header row, -1 to detect it")
	flags.String("index-col", "", "Column to use as the row index")

	bind := map[string]string{
		"log.level":             "log-level",
		"log.format":            "log-format",
		"store.kind":            "store",
		"store.path":            "path",
		"sheets.spreadsheet_id": "spreadsheet",
		"sheets.credentials":    "credentials",
		"sql.driver":            "sql-driver",
		"sql.dsn":               "dsn",
		"infer.policy":          "policy",
		"infer.mode":            "mode",
		"infer.threshold":       "threshold",
		"infer.date_formats":    "date-formats",
		"read.header_row":       "header-row",
		"read.index_col":        "index-col",
	}
	for key, flag := range bind {
		a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newDownloadCmd(a),
		newUploadCmd(a),
		newInferCmd(a),
		newConvertCmd(a),
		newTablesCmd(a),
		newLocateCmd(a),
		newTUICmd(a),
	)
	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	log, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}
