// Package server implements the reviewfang LSP server: it keeps per-document
// sessions in sync with editor edits and publishes review findings as
// diagnostics.
package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/Sumatoshi-tech/reviewfang/internal/config"
	"github.com/Sumatoshi-tech/reviewfang/internal/diagnostics"
	"github.com/Sumatoshi-tech/reviewfang/internal/review"
	"github.com/Sumatoshi-tech/reviewfang/internal/session"
	"github.com/Sumatoshi-tech/reviewfang/pkg/syntax"
	"github.com/Sumatoshi-tech/reviewfang/pkg/textutil"
	"github.com/Sumatoshi-tech/reviewfang/pkg/version"
)

// serverName identifies the server to LSP clients.
const serverName = "reviewfang"

// ReviewCommand is the host-registered command for manual review. Its first
// argument is the document URI; any further arguments are top-level function
// names to review independently, with findings merged.
const ReviewCommand = "reviewfang.review"

// Reviewer is the findings service surface the server depends on.
type Reviewer interface {
	Review(ctx context.Context, filename string, startLine int, region string) ([]review.Finding, error)
}

// Server wires LSP events to sessions and reviews.
type Server struct {
	sessions *session.Manager
	cfg      *config.Config
	reviewer Reviewer
	logger   *slog.Logger
	handler  protocol.Handler
}

// NewServer creates an LSP server with default handlers.
func NewServer(cfg *config.Config, reviewer Reviewer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		sessions: session.NewManager(),
		cfg:      cfg,
		reviewer: reviewer,
		logger:   logger,
	}

	srv.handler = protocol.Handler{
		Initialize:              srv.initialize,
		Initialized:             srv.initialized,
		Shutdown:                srv.shutdown,
		SetTrace:                srv.setTrace,
		TextDocumentDidOpen:     srv.didOpen,
		TextDocumentDidChange:   srv.didChange,
		TextDocumentDidClose:    srv.didClose,
		WorkspaceExecuteCommand: srv.executeCommand,
	}

	return srv
}

// Run starts the LSP server on stdio.
func (srv *Server) Run() error {
	lspServer := glspserver.NewServer(&srv.handler, serverName, false)

	return lspServer.RunStdio()
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{ReviewCommand},
	}

	serverVersion := version.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &serverVersion,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	sess, err := srv.sessions.Open(context.Background(), uri, params.TextDocument.LanguageID, []byte(params.TextDocument.Text))
	if err != nil {
		// Documents we cannot parse are simply not reviewed.
		srv.logger.Debug("document not tracked", slog.String("uri", uri), slog.Any("error", err))

		return nil
	}

	srv.logger.Info("document opened",
		slog.String("uri", uri),
		slog.String("language", sess.Language()))

	wholeDoc := syntax.Span{Start: 0, End: uint(len(sess.Text()))}
	srv.triggerReview(ctx, sess, []syntax.Span{wholeDoc})

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	sess, ok := srv.sessions.Get(uri)
	if !ok || len(params.ContentChanges) == 0 {
		return nil
	}

	// Only the first content change of a batch is translated into a tree
	// edit; hosts sending single-change batches (the common case) lose
	// nothing, and a full-text change replaces the document wholesale.
	change, ranged, ok := decodeContentChange(params.ContentChanges[0])
	if !ok {
		return nil
	}

	var (
		err    error
		edited syntax.Span
	)

	if ranged {
		err = sess.ApplyRanged(context.Background(), change)
		edited = editedSpan(sess.Text(), change)
	} else {
		err = sess.ReplaceText(context.Background(), []byte(change.Text))
		edited = syntax.Span{Start: 0, End: uint(len(sess.Text()))}
	}

	if err != nil {
		srv.logger.Warn("edit not applied", slog.String("uri", uri), slog.Any("error", err))

		return nil
	}

	region := syntax.EnclosingBlock(
		sess.Index(),
		syntax.ByteInterval(edited.Start, edited.End),
		srv.cfg.BlockTypeSet(),
		srv.cfg.Review.GrabParent,
	)

	srv.triggerReview(ctx, sess, []syntax.Span{region})

	return nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.sessions.Close(params.TextDocument.URI)

	return nil
}

// executeCommand handles the manual review command: no function names means
// the whole document; otherwise each matching top-level function is
// reviewed independently and the findings merge.
func (srv *Server) executeCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != ReviewCommand {
		return nil, nil
	}

	uri, names := commandArguments(params.Arguments)
	if uri == "" {
		return nil, nil
	}

	sess, ok := srv.sessions.Get(uri)
	if !ok {
		return nil, nil
	}

	var spans []syntax.Span

	if len(names) == 0 {
		spans = []syntax.Span{{Start: 0, End: uint(len(sess.Text()))}}
	} else {
		spans = syntax.TopLevelFunctions(sess.Index(), names, sess.Text())
	}

	srv.triggerReview(ctx, sess, spans)

	return nil, nil
}

// triggerReview starts an asynchronous review of the given spans, gated so
// at most one review is in flight per document. The session's trees are not
// touched while the request is outstanding; diagnostics mutation happens in
// the continuation. A response arriving after further edits is still
// applied (accepted staleness window).
func (srv *Server) triggerReview(ctx *glsp.Context, sess *session.Session, spans []syntax.Span) {
	if len(spans) == 0 {
		return
	}

	if err := srv.cfg.RequireModel(); err != nil {
		srv.showError(ctx, err.Error())

		return
	}

	if !sess.TryBeginReview() {
		return
	}

	// Snapshot the text so both the request and the finding resolution in
	// the continuation work from the state that triggered the review; the
	// live buffer may be edited while the request is outstanding and must
	// not be touched from this goroutine.
	text := string(sess.Text())
	uri := sess.URI()

	go func() {
		defer sess.EndReview()

		applied := 0

		for _, span := range spans {
			applied += srv.reviewSpan(context.Background(), sess, uri, text, span)
		}

		srv.publish(ctx, uri, sess.Diagnostics().Flatten())
		srv.logger.Info("review cycle complete",
			slog.String("uri", uri),
			slog.Int("findings", applied))
	}()
}

// reviewSpan reviews one text region and applies its findings. Returns the
// number of findings applied; every failure mode yields zero and lets the
// next qualifying edit retry.
func (srv *Server) reviewSpan(ctx context.Context, sess *session.Session, uri, text string, span syntax.Span) int {
	region, startLine, ok := carveRegion(text, span, srv.cfg.Review.MaxRegionBytes)
	if !ok {
		srv.logger.Debug("region skipped", slog.String("uri", uri), slog.Uint64("bytes", uint64(span.End-span.Start)))

		return 0
	}

	findings, err := srv.reviewer.Review(ctx, uri, startLine, region)
	if err != nil {
		var decodeErr *review.DecodeError

		if errors.As(err, &decodeErr) {
			// Malformed model output produces no findings and is not a
			// user-facing error.
			srv.logger.Debug("unusable model response",
				slog.String("uri", uri),
				slog.String("reason", decodeErr.Reason))
		} else {
			srv.logger.Warn("review failed", slog.String("uri", uri), slog.Any("error", err))
		}

		return 0
	}

	return diagnostics.ApplyFindings(sess.Diagnostics(), findings, text)
}

func (srv *Server) publish(ctx *glsp.Context, uri string, diags []protocol.Diagnostic) {
	ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func (srv *Server) showError(ctx *glsp.Context, message string) {
	messageType := protocol.MessageTypeError

	ctx.Notify("window/showMessage", &protocol.ShowMessageParams{
		Type:    messageType,
		Message: message,
	})
}

// commandArguments splits the review command's arguments into the document
// URI and the optional function names.
func commandArguments(args []any) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}

	uri, ok := args[0].(string)
	if !ok {
		return "", nil
	}

	names := make([]string, 0, len(args)-1)

	for _, arg := range args[1:] {
		if name, nameOK := arg.(string); nameOK && name != "" {
			names = append(names, name)
		}
	}

	return uri, names
}

// carveRegion slices the span's text out of the document, reporting the
// 1-based document line its first byte sits on. Oversized or out-of-range
// spans are skipped rather than truncated.
func carveRegion(text string, span syntax.Span, maxBytes int) (string, int, bool) {
	if span.End > uint(len(text)) || span.Start > span.End {
		return "", 0, false
	}

	if int(span.End-span.Start) > maxBytes {
		return "", 0, false
	}

	return text[span.Start:span.End], textutil.LineAt(text, span.Start), true
}

// editedSpan locates a ranged change within the already-updated text.
func editedSpan(newText []byte, change syntax.Change) syntax.Span {
	start := syntax.PositionOffset(newText, change.StartLine, change.StartChar)

	return syntax.Span{Start: start, End: start + uint(len(change.Text))}
}

// decodeContentChange interprets one LSP content change. Hosts deliver
// either a ranged change (map with "range" and "text") or a whole-document
// change (map with "text" only); glsp may also hand over already-typed
// events.
func decodeContentChange(raw any) (change syntax.Change, ranged, ok bool) {
	switch event := raw.(type) {
	case protocol.TextDocumentContentChangeEvent:
		return changeFromEvent(event)
	case protocol.TextDocumentContentChangeEventWhole:
		return syntax.Change{Text: event.Text}, false, true
	case map[string]any:
		return changeFromMap(event)
	default:
		return syntax.Change{}, false, false
	}
}

func changeFromEvent(event protocol.TextDocumentContentChangeEvent) (syntax.Change, bool, bool) {
	if event.Range == nil {
		return syntax.Change{Text: event.Text}, false, true
	}

	return syntax.Change{
		StartLine: uint(event.Range.Start.Line),
		StartChar: uint(event.Range.Start.Character),
		EndLine:   uint(event.Range.End.Line),
		EndChar:   uint(event.Range.End.Character),
		Text:      event.Text,
	}, true, true
}

func changeFromMap(event map[string]any) (syntax.Change, bool, bool) {
	text, textOK := event["text"].(string)
	if !textOK {
		return syntax.Change{}, false, false
	}

	rangeMap, rangeOK := event["range"].(map[string]any)
	if !rangeOK {
		return syntax.Change{Text: text}, false, true
	}

	startLine, startChar, startOK := positionFromMap(rangeMap["start"])
	endLine, endChar, endOK := positionFromMap(rangeMap["end"])

	if !startOK || !endOK {
		return syntax.Change{}, false, false
	}

	return syntax.Change{
		StartLine: startLine,
		StartChar: startChar,
		EndLine:   endLine,
		EndChar:   endChar,
		Text:      text,
	}, true, true
}

func positionFromMap(raw any) (line, char uint, ok bool) {
	posMap, posOK := raw.(map[string]any)
	if !posOK {
		return 0, 0, false
	}

	lineNum, lineOK := posMap["line"].(float64)
	charNum, charOK := posMap["character"].(float64)

	if !lineOK || !charOK || lineNum < 0 || charNum < 0 {
		return 0, 0, false
	}

	return uint(lineNum), uint(charNum), true
}
