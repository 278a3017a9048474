package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"studio-storefront/config"
	"studio-storefront/models"
	"studio-storefront/pricing"
	"studio-storefront/utils"
)

//go:embed templates/quote.html
var templateFS embed.FS

var quoteTemplate = template.Must(template.ParseFS(templateFS, "templates/quote.html"))

// QuoteServiceInterface defines the contract for quote document rendering
type QuoteServiceInterface interface {
	RenderQuoteHTML(lead *models.Lead) (string, error)
	GeneratePDF(ctx context.Context, shareToken string) ([]byte, error)
}

// QuoteService renders a lead's quote as HTML and prints it to PDF with headless Chrome.
// Amounts are taken from the lead's stored breakdown and only formatted here.
type QuoteService struct {
	studio     config.Studio
	baseURL    string // Base URL the render endpoint is served on (e.g., "http://localhost:8080")
	logoPath   string
	chromePath string

	logoOnce sync.Once
	logoURI  template.URL
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(studio config.Studio, baseURL, logoPath, chromePath string) *QuoteService {
	return &QuoteService{
		studio:     studio,
		baseURL:    baseURL,
		logoPath:   logoPath,
		chromePath: chromePath,
	}
}

// Ensure QuoteService implements QuoteServiceInterface
var _ QuoteServiceInterface = (*QuoteService)(nil)

// detectChromePath detects the path to Chrome/Chromium executable
// Checks the configured path first, then common installation paths
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	// Common paths to check
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

type quoteLine struct {
	Title         string
	CategoryLabel string
	Price         string
	Original      string
	IsGift        bool
}

type quoteData struct {
	Studio              config.Studio
	Lead                *models.Lead
	Number              string
	Date                string
	LogoURI             template.URL
	Lines               []quoteLine
	Subtotal            string
	GlobalDiscount      string
	GlobalDiscountLabel string
	FinalTotal          string
	TotalSavings        string
	IndividualSavings   string
	GiftSavings         string
}

// RenderQuoteHTML renders the quote document for a lead
func (s *QuoteService) RenderQuoteHTML(lead *models.Lead) (string, error) {
	if lead == nil {
		return "", fmt.Errorf("lead is required")
	}
	b := lead.Pricing

	data := quoteData{
		Studio:         s.studio,
		Lead:           lead,
		Number:         quoteNumber(lead),
		Date:           quoteDate(lead.CreatedAt),
		LogoURI:        s.logo(),
		Subtotal:       utils.FormatEUR(b.Subtotal()),
		GlobalDiscount: utils.FormatSavings(b.GlobalDiscountSavings()),
		FinalTotal:     utils.FormatEUR(b.FinalTotal()),
	}
	if b.TotalSavings() > 0 {
		data.TotalSavings = utils.FormatEUR(b.TotalSavings())
	}
	if b.IndividualDiscountSavings() > 0 {
		data.IndividualSavings = utils.FormatEUR(b.IndividualDiscountSavings())
	}
	if b.GiftSavings() > 0 {
		data.GiftSavings = utils.FormatEUR(b.GiftSavings())
	}
	data.GlobalDiscountLabel = "Sconto"
	if gd, ok := b.GlobalDiscount(); ok && gd.Type == pricing.DiscountPercent {
		data.GlobalDiscountLabel = "Sconto " + gd.Label
	}

	for _, line := range b.Lines() {
		ql := quoteLine{
			Title:         line.Title,
			CategoryLabel: utils.CategoryLabel(string(line.Category)),
			Price:         utils.FormatEUR(line.Price),
			IsGift:        line.IsGift,
		}
		if line.IsGift || line.OriginalPrice > line.Price {
			ql.Original = utils.FormatEUR(line.OriginalPrice)
		}
		data.Lines = append(data.Lines, ql)
	}

	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GeneratePDF prints the quote render endpoint for shareToken to an A4 PDF using chromedp
func (s *QuoteService) GeneratePDF(ctx context.Context, shareToken string) ([]byte, error) {
	// Create context with timeout (30 seconds)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.Flag("enable-print-preview", true),
	)
	if chromePath := detectChromePath(s.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	} else {
		log.Printf("⚠️ GeneratePDF: no Chrome binary found, letting chromedp auto-detect")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := fmt.Sprintf("%s/quotes/%s/render", s.baseURL, shareToken)
	log.Printf("🖨️ GeneratePDF: rendering %s", renderURL)

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 1123), // A4 at 96 DPI
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		// Wait for fonts and the logo to load
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 = 8.27" x 11.69"; margins live in the page CSS
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Printf("✅ GeneratePDF: %d bytes for quote %s", len(pdfBuf), shareToken)
	return pdfBuf, nil
}

// logo loads the studio logo once; a missing or unreadable logo falls back to the studio name
func (s *QuoteService) logo() template.URL {
	s.logoOnce.Do(func() {
		if s.logoPath == "" {
			return
		}
		uri, err := LogoDataURI(s.logoPath)
		if err != nil {
			log.Printf("⚠️ QuoteService: logo unavailable: %v", err)
			return
		}
		s.logoURI = template.URL(uri)
	})
	return s.logoURI
}

func quoteNumber(lead *models.Lead) string {
	token := lead.ShareToken
	if len(token) > 8 {
		token = token[:8]
	}
	year := time.Now().Year()
	if t, err := time.Parse(time.RFC3339, lead.CreatedAt); err == nil {
		year = t.Year()
	}
	return fmt.Sprintf("%d-%s", year, token)
}

func quoteDate(createdAt string) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}
	return t.Format("02/01/2006")
}
