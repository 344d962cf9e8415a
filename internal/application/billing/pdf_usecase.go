package billing

import (
	"context"
	"fmt"

	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/internal/domain/entity"
	"github.com/elhamd/elhamd-api/internal/domain/invoicing"
	"github.com/elhamd/elhamd-api/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
// Solo se permite generar el PDF si la factura ya fue emitida (no está en DRAFT).
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	generator   InvoicePDFGenerator
	strict      bool
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(invoiceRepo repository.InvoiceRepository, generator InvoicePDFGenerator, strictItemTypes bool) *PDFUseCase {
	return &PDFUseCase{invoiceRepo: invoiceRepo, generator: generator, strict: strictItemTypes}
}

// DownloadInvoicePDF recupera la factura y sus líneas y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
//   - domain.ErrInvalidInput     si la factura está en DRAFT.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if inv.Status == entity.InvoiceStatusDraft {
		return nil, "", fmt.Errorf("%w: la factura está en borrador, envíela antes de descargar el PDF", domain.ErrInvalidInput)
	}

	// ── 2. Cargar líneas y resolver su tipo ───────────────────────────────────
	items, err := uc.invoiceRepo.GetItems(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}
	types := itemTypes(invoicing.ExtractLinks(items, invoicing.ExtractOptions{Strict: uc.strict}))
	lines := make([]InvoiceLineForPDF, 0, len(items))
	for _, it := range items {
		lines = append(lines, InvoiceLineForPDF{InvoiceItem: *it, ItemType: string(types[it.ID])})
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, lines)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber), nil
}
