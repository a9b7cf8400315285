// Command worker cleanses a CSV or NDJSON file offline, without the API
// server. Each input row is resolved to one address, run through the
// pipeline, and written out as NDJSON.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/address-cleanser/internal/batch"
	"github.com/address-cleanser/internal/pipeline"
	"github.com/address-cleanser/internal/reference"
	"github.com/address-cleanser/internal/tagger"
)

func main() {
	var (
		inputPath   = flag.String("input", "-", "input file (.csv or .ndjson), - for NDJSON on stdin")
		outputPath  = flag.String("output", "", "output NDJSON file, default stdout")
		mode        = flag.String("mode", "single-column", "column mode: single-column, explicit-columns, auto-combine")
		modeColumns = flag.String("columns", "", "comma-separated columns for the mode")
		chunkSize   = flag.Int("chunk", 500, "rows per chunk")
		workers     = flag.Int("workers", 4, "concurrent workers per chunk")
		preserve    = flag.Bool("preserve", false, "carry original columns into the output")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *inputPath, *outputPath, *mode, *modeColumns, *chunkSize, *workers, *preserve); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, inputPath, outputPath, mode, modeColumns string, chunkSize, workers int, preserve bool) error {
	source, err := openSource(inputPath)
	if err != nil {
		return err
	}
	defer source.Close()

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	var columns []string
	if modeColumns != "" {
		columns = strings.Split(modeColumns, ",")
	}
	resolver := batch.NewColumnResolver(batch.Mode(mode), columns...)

	tables := reference.Default()
	cleanser := pipeline.New(tagger.NewRuleTagger(tables), tables, logger)
	processor := batch.NewProcessor(cleanser, resolver, batch.Options{
		ChunkSize: chunkSize,
		Workers:   workers,
	}, logger)

	encoder := json.NewEncoder(writer)
	summary, err := processor.Run(ctx, source, func(rr batch.RowResult) error {
		return encoder.Encode(rr.OutputFields(preserve))
	})
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}

	logger.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("valid", summary.ValidCount),
		zap.Int("invalid", summary.InvalidCount),
		zap.Int("errors", summary.ErrorCount),
		zap.Float64("avg_confidence", summary.AverageConfidence()))
	return nil
}

// fileSource adapts CSV and NDJSON files to the batch row source.
type fileSource struct {
	next  func() (batch.Row, error)
	close func() error
}

func (fs *fileSource) Next() (batch.Row, error) { return fs.next() }
func (fs *fileSource) Close() error             { return fs.close() }

func openSource(path string) (*fileSource, error) {
	if path == "" || path == "-" {
		return ndjsonSource(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return csvSource(f)
	}
	return ndjsonSource(f), nil
}

// csvSource reads the header row up front and yields one batch row per record.
func csvSource(f *os.File) (*fileSource, error) {
	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	return &fileSource{
		close: f.Close,
		next: func() (batch.Row, error) {
			record, err := reader.Read()
			if err != nil {
				return batch.Row{}, err
			}
			values := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(record) {
					values[col] = record[i]
				}
			}
			return batch.Row{Columns: header, Values: values}, nil
		},
	}, nil
}

// ndjsonSource yields one batch row per JSON object line. Column order follows
// the first line seen.
func ndjsonSource(f *os.File) *fileSource {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var columns []string
	return &fileSource{
		close: f.Close,
		next: func() (batch.Row, error) {
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				var values map[string]string
				if err := json.Unmarshal([]byte(line), &values); err != nil {
					return batch.Row{}, fmt.Errorf("parse ndjson line: %w", err)
				}
				if columns == nil {
					columns = make([]string, 0, len(values))
					for col := range values {
						columns = append(columns, col)
					}
				}
				return batch.Row{Columns: columns, Values: values}, nil
			}
			if err := scanner.Err(); err != nil {
				return batch.Row{}, err
			}
			return batch.Row{}, io.EOF
		},
	}
}
