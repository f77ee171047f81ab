package simulator

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/faldi95/supplynet/internal/cloudwriter"
	"github.com/faldi95/supplynet/internal/simulator/producers"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct {
	w io.Writer
}

type CSVOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
	writers  map[string]*csv.Writer
	headers  map[string][]string
}

type JSONOutput struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

type ParquetOutput struct {
	basePath           string
	folder             string
	mu                 sync.Mutex
	writers            map[string]*writer.ParquetWriter
	files              map[string]source.ParquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	cloudPrefix        string
}

type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
		writers:  make(map[string]*csv.Writer),
		headers:  make(map[string][]string),
	}
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

// NewParquetOutput writes one parquet file per topic, locally or, when factory
// is not nil, as objects under prefix in bucket.
func NewParquetOutput(basePath, folder string, factory cloudwriter.CloudWriterFactory, bucket, prefix string) *ParquetOutput {
	return &ParquetOutput{
		basePath:           basePath,
		folder:             folder,
		writers:            make(map[string]*writer.ParquetWriter),
		files:              make(map[string]source.ParquetFile),
		cloudWriterFactory: factory,
		cloudBucketName:    bucket,
		cloudPrefix:        prefix,
	}
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{
		cloudWriter: cloudWriter,
		offset:      0,
	}
}

func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	// objects are write-once, the open file is the only handle
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, string(msg)); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error {
	return nil
}

func topicDir(basePath, folder, topic string) (string, error) {
	fullPath := filepath.Join(basePath, folder, topic)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return "", err
	}
	return fullPath, nil
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	var record map[string]interface{}
	if err := json.Unmarshal(msg, &record); err != nil {
		return err
	}

	csvWriter, ok := c.writers[topic]
	if !ok {
		fullPath, err := topicDir(c.basePath, c.folder, topic)
		if err != nil {
			return err
		}
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		csvWriter = csv.NewWriter(file)
		c.files[topic] = file
		c.writers[topic] = csvWriter

		headers := c.getHeaders(record)
		if err := csvWriter.Write(headers); err != nil {
			return err
		}
		c.headers[topic] = headers
	}

	row := make([]string, len(c.headers[topic]))
	for i, header := range c.headers[topic] {
		value, ok := record[header]
		if !ok || value == nil {
			row[i] = ""
		} else {
			row[i] = fmt.Sprintf("%v", value)
		}
	}

	if err := csvWriter.Write(row); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (c *CSVOutput) getHeaders(record map[string]interface{}) []string {
	var headers []string
	for key := range record {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}

func (c *CSVOutput) Close() error {
	var lastErr error
	for topic, csvWriter := range c.writers {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			lastErr = err
		}
		if err := c.files[topic].Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	if !json.Valid(msg) {
		return fmt.Errorf("invalid JSON message for topic %s", topic)
	}

	file, ok := j.files[topic]
	if !ok {
		fullPath, err := topicDir(j.basePath, j.folder, topic)
		if err != nil {
			return err
		}
		file, err = os.Create(filepath.Join(fullPath, "data.json"))
		if err != nil {
			return err
		}
		j.files[topic] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	var lastErr error
	for _, file := range j.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	record, err := decodeRecord(topic, msg)
	if err != nil {
		return fmt.Errorf("failed to decode %s record: %w", topic, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pw, ok := p.writers[topic]
	if !ok {
		pw, err = p.createNewWriter(topic)
		if err != nil {
			return fmt.Errorf("failed to create new writer: %w", err)
		}
	}

	if err := pw.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func (p *ParquetOutput) createNewWriter(topic string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	if p.cloudWriterFactory != nil {
		objectPath := path.Join(p.cloudPrefix, p.folder, topic, "data.parquet")
		cloudWriter, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cloudWriter)
	} else {
		fullPath, err := topicDir(p.basePath, p.folder, topic)
		if err != nil {
			return nil, err
		}
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	schema, err := GetSchema(topic)
	if err != nil {
		fw.Close()
		return nil, err
	}

	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	p.writers[topic] = pw
	p.files[topic] = fw
	return pw, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for topic, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = fmt.Errorf("failed to finish parquet file for %s: %w", topic, err)
		}
		if err := p.files[topic].Close(); err != nil {
			lastErr = fmt.Errorf("failed to close parquet file for %s: %w", topic, err)
		}
	}
	return lastErr
}

// determineOutputDestination picks the export sink. A nil destination means
// the network is not exported.
func (s *Simulator) determineOutputDestination(ctx context.Context) (OutputDestination, error) {
	cfg := s.Config
	if cfg.KafkaEnabled {
		producer, err := producers.NewSaramaProducer(cfg.KafkaBrokerList, s.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
		}
		return producer, nil
	}

	switch cfg.OutputFormat {
	case "":
		return nil, nil
	case "console":
		return NewConsoleOutput(os.Stdout), nil
	case "json":
		return NewJSONOutput(cfg.OutputPath, cfg.OutputFolder), nil
	case "csv":
		return NewCSVOutput(cfg.OutputPath, cfg.OutputFolder), nil
	case "parquet":
		if cfg.OutputDestination != "cloud" {
			return NewParquetOutput(cfg.OutputPath, cfg.OutputFolder, nil, "", ""), nil
		}
		factory, err := s.cloudWriters(ctx)
		if err != nil {
			return nil, err
		}
		return NewParquetOutput(cfg.OutputPath, cfg.OutputFolder, factory, cfg.CloudStorage.BucketName, s.RunID), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
}

func (s *Simulator) cloudWriters(ctx context.Context) (cloudwriter.CloudWriterFactory, error) {
	if s.CloudWriterFactory != nil {
		return s.CloudWriterFactory, nil
	}

	switch s.Config.CloudStorage.Provider {
	case "s3":
		factory, err := cloudwriter.NewS3WriterFactory(ctx, s.Config.CloudStorage.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		s.CloudWriterFactory = factory
		return factory, nil
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %q", s.Config.CloudStorage.Provider)
	}
}

// compile-time check that the Kafka producer is a valid sink
var _ OutputDestination = (*producers.SaramaProducer)(nil)
