package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format      ExportFormat
	StartTime   time.Time
	EndTime     time.Time
	BuyerFilter string // Filter by buyer pubkey
	OutputDir   string
}

// ReceiptExporter writes mint history to disk
type ReceiptExporter struct {
	logger *zap.Logger
}

func NewReceiptExporter(logger *zap.Logger) *ReceiptExporter {
	return &ReceiptExporter{
		logger: logger.Named("export"),
	}
}

// ExportReceipts exports mint receipts based on the provided options
func (re *ReceiptExporter) ExportReceipts(receipts []*curve.MintReceipt, options ExportOptions) (string, error) {
	filtered := re.filterReceipts(receipts, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no receipts match the export criteria")
	}

	// Sort by edition: receipts of one collection are strictly ordered
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Edition < filtered[j].Edition
	})

	filename := re.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = re.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = re.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	re.logger.Info("Receipts exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// filterReceipts applies filters to the receipt list
func (re *ReceiptExporter) filterReceipts(receipts []*curve.MintReceipt, options ExportOptions) []*curve.MintReceipt {
	var filtered []*curve.MintReceipt

	for _, r := range receipts {
		if !options.StartTime.IsZero() && r.CreatedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && r.CreatedAt.After(options.EndTime) {
			continue
		}
		if options.BuyerFilter != "" && r.Buyer.String() != options.BuyerFilter {
			continue
		}
		filtered = append(filtered, r)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (re *ReceiptExporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")

	prefix := "receipts_all"
	if options.BuyerFilter != "" {
		prefix = "receipts_" + options.BuyerFilter[:8]
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

// CSVHeaders returns the column headers for receipt CSV export
func CSVHeaders() []string {
	return []string{"id", "collection", "buyer", "edition", "price_lamports", "created_at"}
}

func receiptToCSV(r *curve.MintReceipt) []string {
	return []string{
		r.ID,
		r.Collection.String(),
		r.Buyer.String(),
		strconv.FormatUint(uint64(r.Edition), 10),
		strconv.FormatUint(r.Price, 10),
		r.CreatedAt.Format(time.RFC3339),
	}
}

func (re *ReceiptExporter) exportToCSV(receipts []*curve.MintReceipt, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range receipts {
		if err := writer.Write(receiptToCSV(r)); err != nil {
			return fmt.Errorf("failed to write receipt: %w", err)
		}
	}

	return nil
}

func (re *ReceiptExporter) exportToJSON(receipts []*curve.MintReceipt, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime   time.Time            `json:"export_time"`
		ReceiptCount int                  `json:"receipt_count"`
		Receipts     []*curve.MintReceipt `json:"receipts"`
		Summary      ExportSummary        `json:"summary"`
	}{
		ExportTime:   time.Now(),
		ReceiptCount: len(receipts),
		Receipts:     receipts,
		Summary:      re.calculateSummary(receipts),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// ExportSummary contains summary statistics for exported receipts
type ExportSummary struct {
	TotalReceipts int       `json:"total_receipts"`
	UniqueBuyers  int       `json:"unique_buyers"`
	TotalVolume   uint64    `json:"total_volume"`
	MinPrice      uint64    `json:"min_price"`
	MaxPrice      uint64    `json:"max_price"`
	FirstEdition  uint32    `json:"first_edition"`
	LastEdition   uint32    `json:"last_edition"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// calculateSummary calculates summary statistics for the export
func (re *ReceiptExporter) calculateSummary(receipts []*curve.MintReceipt) ExportSummary {
	summary := ExportSummary{
		TotalReceipts: len(receipts),
	}

	if len(receipts) == 0 {
		return summary
	}

	summary.StartDate = receipts[0].CreatedAt
	summary.EndDate = receipts[len(receipts)-1].CreatedAt
	summary.FirstEdition = receipts[0].Edition
	summary.LastEdition = receipts[len(receipts)-1].Edition
	summary.MinPrice = receipts[0].Price
	summary.MaxPrice = receipts[0].Price

	buyerSet := make(map[solana.PublicKey]bool)

	for _, r := range receipts {
		buyerSet[r.Buyer] = true
		summary.TotalVolume += r.Price

		if r.Price < summary.MinPrice {
			summary.MinPrice = r.Price
		}
		if r.Price > summary.MaxPrice {
			summary.MaxPrice = r.Price
		}
	}

	summary.UniqueBuyers = len(buyerSet)

	return summary
}
