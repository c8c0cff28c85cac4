package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/buildbuildio/stitching"
	"github.com/buildbuildio/stitching/format"
	"github.com/buildbuildio/stitching/gqlerrors"
	"github.com/buildbuildio/stitching/introspection"
	"github.com/buildbuildio/stitching/merger"
	"github.com/buildbuildio/stitching/middleware"
	"github.com/buildbuildio/stitching/queryer"

	"github.com/goccy/go-json"
	log "github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	schemas       []string
	urls          []string
	renames       []string
	dropFields    []string
	headers       []string
	config        string
	output        string
	sourcesOut    string
	stripBindings bool
	verbose       bool
	timeout       time.Duration
}

func newLogger(verbose bool) (log.Logger, error) {
	config := zap.NewDevelopmentConfig()
	level := log.WarnLevel
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		level = log.DebugLevel
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zl, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.NewZapLogger(zl, level), nil
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "stitch",
		Short: "stitch merges GraphQL schemas into one SDL document",
		Example: "stitch --schema users=users.graphql --url posts=http://localhost:4001/query --strip-bindings > schema.graphql\n" +
			"stitch --schema a=a.graphql --schema b=b.graphql --rename b:User=Author --sources-out sources.json\n" +
			"stitch --config stitch.yaml",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return run(ctx, opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.schemas, "schema", "s", nil, "schema SDL file as name=path, repeatable")
	flags.StringArrayVarP(&opts.urls, "url", "u", nil, "remote GraphQL service as name=url, repeatable")
	flags.StringArrayVar(&opts.renames, "rename", nil, "rename as [schema:]Type[.field]=To, repeatable")
	flags.StringArrayVar(&opts.headers, "header", nil, "\"Key: Value\" header sent with introspection queries, repeatable")
	flags.StringSliceVar(&opts.dropFields, "drop-root-field", nil, "query fields removed from every source")
	flags.StringVarP(&opts.config, "config", "c", "", "YAML file listing sources, renames and headers")
	flags.StringVarP(&opts.output, "output", "o", "", "write the merged schema to this file instead of stdout")
	flags.StringVar(&opts.sourcesOut, "sources-out", "", "write the type and field sources as JSON to this file")
	flags.BoolVar(&opts.stripBindings, "strip-bindings", false, "remove @_hc_bind provenance directives from the output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every stage")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout of a single introspection request")

	return cmd
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}

	if opts.config != "" {
		config, err := loadConfig(opts.config)
		if err != nil {
			return err
		}
		if err := config.apply(opts); err != nil {
			return err
		}
	}

	sources, err := parseSources(opts.schemas, opts.urls)
	if err != nil {
		return err
	}

	renames, err := parseRenames(opts.renames)
	if err != nil {
		return err
	}

	headers, err := headerMiddleware(opts.headers)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: opts.timeout}
	stitcher := stitching.NewStitcher(
		stitching.WithLogger(logger),
		stitching.WithRenames(renames...),
		stitching.WithoutRootFields(opts.dropFields...),
		stitching.WithRemoteSchemaIntrospector(&introspection.ParallelRemoteSchemaIntrospector{
			Logger: logger,
			Factory: func(url string) queryer.Queryer {
				return queryer.NewHTTPQueryer(url).
					WithHTTPClient(client).
					WithMiddlewares([]queryer.RequestMiddleware{headers})
			},
		}),
	)

	doc, err := stitcher.Stitch(ctx, sources...)
	if err != nil {
		return err
	}

	if opts.sourcesOut != "" {
		content, err := json.MarshalIndent(merger.NewSourceMap(doc), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.sourcesOut, content, 0o644); err != nil {
			return err
		}
	}

	if opts.stripBindings {
		doc = middleware.StripBindings(doc)
	}

	sdl := format.Document(doc)
	if opts.output != "" {
		return os.WriteFile(opts.output, []byte(sdl), 0o644)
	}

	_, err = io.WriteString(stdout, sdl)
	return err
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		for _, e := range gqlerrors.FormatError(err) {
			fmt.Fprintf(os.Stderr, "%s [%s]\n", e.Message, e.Code())
		}
		os.Exit(1)
	}
}
