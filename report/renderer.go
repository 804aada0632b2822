package report

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/invoiceforge/invoiceforge/internal/invoices"
	"github.com/invoiceforge/invoiceforge/web"
)

// Renderer renders invoices into PDF documents. Output is deterministic
// for identical invoice content, which makes results safe to cache: the
// Redis cache is keyed by a content hash, and concurrent renders of the
// same invoice are collapsed into one Gotenberg call.
type Renderer struct {
	logger    *slog.Logger
	gotenberg *Gotenberg
	templates *template.Template
	cache     *redis.Client
	cacheTTL  time.Duration
	group     singleflight.Group
}

// NewRenderer parses the embedded invoice template. Cache may be nil,
// in which case every render goes to Gotenberg.
func NewRenderer(logger *slog.Logger, gotenberg *Gotenberg, cache *redis.Client, cacheTTL time.Duration) (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"money": func(symbol string, amount decimal.Decimal) string {
			return printer.Sprintf("%s%.2f", symbol, amount.InexactFloat64())
		},
		"formatDate": func(value string) string {
			t, err := time.Parse(invoices.DateLayout, value)
			if err != nil {
				return value
			}
			return t.Format("January 2, 2006")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{
		logger:    logger,
		gotenberg: gotenberg,
		templates: tpl,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}, nil
}

type invoiceView struct {
	invoices.Invoice
	Symbol string
}

// Render produces the PDF for a single invoice.
func (r *Renderer) Render(ctx context.Context, inv invoices.Invoice) ([]byte, error) {
	key, err := cacheKey(inv)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := r.cache.Get(ctx, key).Bytes(); err == nil {
			return data, nil
		}
	}

	result, err, _ := r.group.Do(key, func() (any, error) {
		var buf bytes.Buffer
		view := invoiceView{Invoice: inv, Symbol: invoices.CurrencySymbol(inv.Currency)}
		if err := r.templates.ExecuteTemplate(&buf, "invoice.html", view); err != nil {
			return nil, fmt.Errorf("execute invoice template: %w", err)
		}
		data, err := r.gotenberg.RenderHTML(ctx, buf.String())
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			if err := r.cache.Set(ctx, key, data, r.cacheTTL).Err(); err != nil {
				r.logger.Warn("pdf cache write failed", slog.Any("error", err))
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// cacheKey hashes the invoice content. Deterministic rendering means
// equal content always maps to the same document.
func cacheKey(inv invoices.Invoice) (string, error) {
	data, err := json.Marshal(inv)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "invoice_pdf:" + hex.EncodeToString(sum[:]), nil
}
