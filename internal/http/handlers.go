package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cassa/internal/core"
	"cassa/internal/export"
	"cassa/internal/ledger"
	"cassa/internal/log"
	"cassa/internal/report"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.ledger.Recent()
	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionDTO(tx))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		BadRequestError("malformed request body").Write(w)
		return
	}

	format := "form"
	if parser.IsJSON() {
		format = "json"
	}
	s.logger.DebugContext(ctx, "Parsed transaction request", "body_format", format)

	in, err := parseTransactionInput(parser)
	if err != nil {
		s.validationFailed(w, r, err)
		return
	}

	tx, err := s.ledger.Create(ctx, in)
	if err != nil {
		if isValidationError(err) {
			s.validationFailed(w, r, err)
			return
		}
		if errors.Is(err, ledger.ErrLedgerUnavailable) {
			s.logger.WarnContext(ctx, "Ledger unavailable, transaction not saved",
				log.NewFields().WithOperation(log.OpCreate).WithError(err).ToSlice()...)
			ServiceUnavailableError("ledger storage is unavailable").Write(w)
			return
		}
		s.logger.ErrorContext(ctx, "Failed to create transaction",
			log.NewFields().WithOperation(log.OpCreate).WithError(err).ToSlice()...)
		InternalServerError("failed to save transaction").Write(w)
		return
	}

	NewResponse().Status(http.StatusCreated).JSON(newTransactionDTO(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		BadRequestError("invalid transaction id").Write(w)
		return
	}

	removed, err := s.ledger.Delete(ctx, id)
	if errors.Is(err, ledger.ErrLedgerUnavailable) {
		ServiceUnavailableError("ledger storage is unavailable").Write(w)
		return
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete transaction",
			log.FieldTxID, id, log.FieldOperation, log.OpDelete, log.FieldError, err.Error())
		InternalServerError("failed to delete transaction").Write(w)
		return
	}
	if !removed {
		NotFoundError("transaction not found").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(newStatisticsDTO(s.ledger.Statistics())).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ledger.Report()
	if err != nil {
		s.exportFailed(w, r, err)
		return
	}
	NewResponse().JSON(doc).Write(w)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	sheet, err := s.ledger.Sheet()
	if err != nil {
		s.exportFailed(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, sheet); err != nil {
		s.exportFailed(w, r, err)
		return
	}
	NewResponse().Attachment(contentTypeXLSX, report.XLSXFileName, buf.Bytes()).Write(w)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ledger.Report()
	if err != nil {
		s.exportFailed(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, doc); err != nil {
		s.exportFailed(w, r, err)
		return
	}
	NewResponse().Attachment(contentTypePDF, report.PDFFileName, buf.Bytes()).Write(w)
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.sheets == nil {
		ServiceUnavailableError("spreadsheet export is not configured").Write(w)
		return
	}
	sheet, err := s.ledger.Sheet()
	if err != nil {
		s.exportFailed(w, r, err)
		return
	}
	ref, err := s.sheets.WriteSheet(r.Context(), sheet)
	if err != nil {
		s.exportFailed(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Sheet exported",
		log.FieldSheetsRef, ref, log.FieldCount, len(sheet.Rows), log.FieldOperation, log.OpExport)
	NewResponse().JSON(map[string]any{"ref": ref, "rows": len(sheet.Rows)}).Write(w)
}

func (s *Server) validationFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.DebugContext(r.Context(), "Rejected transaction input",
		log.NewFields().WithOperation(log.OpValidate).WithError(err).ToSlice()...)
	UnprocessableEntityError(err.Error()).Write(w)
}

func (s *Server) exportFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ledger.ErrNoTransactions) {
		ConflictError(err.Error()).Write(w)
		return
	}
	s.logger.ErrorContext(r.Context(), "Export failed",
		log.NewFields().WithOperation(log.OpExport).WithError(err).ToSlice()...)
	InternalServerError("export failed").Write(w)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrInvalidMode)
}
