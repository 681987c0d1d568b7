// Package api はbathtilesのAPIサーバー実装を提供します。
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/stsysd/bathtiles/config"
	"github.com/stsysd/bathtiles/heatmap"
	"github.com/stsysd/bathtiles/model"
	"github.com/stsysd/bathtiles/store"
)

// maxPayloadBytes はインポートするペイロードの上限です。
const maxPayloadBytes = 10 << 20

// Server はAPIサーバーの構造体です。
type Server struct {
	router  *http.ServeMux
	store   store.Store
	config  *config.Config
	opts    *heatmap.Options
	metrics *Metrics
}

// ErrorResponse はエラーレスポンスの構造体です。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := ErrorResponse{
		Error: message,
		Code:  statusCode,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}

// writeJSON はJSON形式でレスポンスを返却します。
func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeStoreError はエラーの種類に応じたステータスコードでエラーを返却します。
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrCalendarNotFound):
		writeJSONError(w, "Calendar not found", http.StatusNotFound)
	case isClientError(err):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Error handling calendar: %v", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
// optsがnilの場合は heatmap.DefaultOptions を使用します。
func NewServer(store store.Store, config *config.Config, opts *heatmap.Options) *Server {
	if opts == nil {
		opts = heatmap.DefaultOptions()
	}
	s := &Server{
		router:  http.NewServeMux(),
		store:   store,
		config:  config,
		opts:    opts,
		metrics: NewMetrics(),
	}
	s.routes()
	return s
}

// routes はAPIエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	// ヘルスチェックとメトリクスは認証不要
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)
	s.router.Handle("GET /metrics", s.metrics.Handler())

	// すべての保護されたエンドポイントをまずセキュアなルータに登録
	securedHandler := http.NewServeMux()

	// Calendar endpoints
	securedHandler.Handle("POST /api/v0/c", s.metrics.WrapHandler("create_calendar", http.HandlerFunc(s.handleCreateCalendar)))
	securedHandler.Handle("GET /api/v0/c", s.metrics.WrapHandler("list_calendars", http.HandlerFunc(s.handleListCalendars)))
	securedHandler.Handle("GET /api/v0/c/{calendar_id}", s.metrics.WrapHandler("get_calendar", http.HandlerFunc(s.handleGetCalendar)))
	securedHandler.Handle("PUT /api/v0/c/{calendar_id}", s.metrics.WrapHandler("import_calendar", http.HandlerFunc(s.handleImportCalendar)))
	securedHandler.Handle("DELETE /api/v0/c/{calendar_id}", s.metrics.WrapHandler("delete_calendar", http.HandlerFunc(s.handleDeleteCalendar)))
	securedHandler.Handle("GET /api/v0/c/{calendar_id}/model", s.metrics.WrapHandler("get_model", http.HandlerFunc(s.handleGetModel)))

	// 認証ミドルウェアを適用し、メインルータにマウント
	s.router.Handle("/api/", s.authMiddleware(securedHandler))

	// Graph endpoints - support both with and without .svg extension
	graph := s.metrics.WrapHandler("graph", http.HandlerFunc(s.handleGetGraph))
	s.router.Handle("GET /c/{calendar_id}/graph.svg", graph)
	s.router.Handle("GET /c/{calendar_id}/graph", graph)
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// routesに設定されたルーティングを使用する
	s.router.ServeHTTP(w, r)
}

// Metrics はサーバーのメトリクスを返します。
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// CalendarResponse はカレンダーのメタデータと統計情報のレスポンスです。
type CalendarResponse struct {
	model.Calendar
	Stats heatmap.Stats `json:"stats"`
}

// CalendarDetailResponse は日ごとの件数を含むレスポンスです。
type CalendarDetailResponse struct {
	CalendarResponse
	Counts heatmap.CountTable `json:"counts"`
}

// ImportCalendarResponse は再インポートのレスポンスです。
type ImportCalendarResponse struct {
	CalendarResponse
	Imported bool `json:"imported"`
}

// ListCalendarsResponse はカレンダー一覧のレスポンスです。
type ListCalendarsResponse struct {
	Items []*model.Calendar `json:"items"`
}

// ModelResponse は描画用モデルのレスポンスです。
type ModelResponse struct {
	*heatmap.Model
	MonthLabels []string              `json:"month_labels"`
	Legend      []heatmap.ColorBucket `json:"legend"`
	Palette     []string              `json:"palette"`
}

func newCalendarResponse(e *store.Entry) CalendarResponse {
	return CalendarResponse{Calendar: e.Meta, Stats: e.Calendar.Table().Stats}
}

// readPayload はリクエストボディからペイロードを読み込みます。
func readPayload(r *http.Request) ([]byte, error) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(payload) > maxPayloadBytes {
		return nil, model.NewMalformedInputError("", "payload is too large", nil)
	}
	return payload, nil
}

// CreateCalendarParams represents parameters for creating a calendar.
type CreateCalendarParams struct {
	Name        *model.CalendarName
	Description string
	Merge       heatmap.MergePolicy
	Payload     []byte
}

// NewCreateCalendarParams creates parameters for calendar creation from HTTP request.
func NewCreateCalendarParams(r *http.Request, defaultMerge heatmap.MergePolicy) (*CreateCalendarParams, error) {
	query := r.URL.Query()

	name, err := model.NewCalendarName(query.Get("name"))
	if err != nil {
		return nil, err
	}

	merge := defaultMerge
	if m := query.Get("merge"); m != "" {
		merge, err = heatmap.ParseMergePolicy(m)
		if err != nil {
			return nil, err
		}
	}

	payload, err := readPayload(r)
	if err != nil {
		return nil, err
	}

	return &CreateCalendarParams{
		Name:        name,
		Description: query.Get("description"),
		Merge:       merge,
		Payload:     payload,
	}, nil
}

// handleCreateCalendar はカレンダー作成エンドポイントのハンドラーです。
func (s *Server) handleCreateCalendar(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewCreateCalendarParams(r, s.opts.Merge)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := *s.opts
	opts.Merge = params.Merge

	// ペイロードの集計
	cal, err := heatmap.NewCalendar(params.Payload, &opts)
	s.metrics.ObserveImport("http", err == nil, err)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	meta, err := model.NewCalendar(params.Name.String(), params.Description)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// カレンダーの保存
	if err := s.store.CreateCalendar(r.Context(), meta, cal); err != nil {
		writeStoreError(w, err)
		return
	}
	s.metrics.CalendarCreated()

	writeJSON(w, newCalendarResponse(&store.Entry{Meta: *meta, Calendar: cal}), http.StatusCreated)
}

// ListCalendarsParams represents parameters for listing calendars.
type ListCalendarsParams struct {
	Pagination *model.Pagination
}

// NewListCalendarsParams creates parameters for calendar listing from HTTP request.
func NewListCalendarsParams(r *http.Request) (*ListCalendarsParams, error) {
	query := r.URL.Query()

	pagination, err := model.NewPagination(query.Get("limit"), query.Get("offset"))
	if err != nil {
		return nil, err
	}

	return &ListCalendarsParams{
		Pagination: pagination,
	}, nil
}

// handleListCalendars はカレンダー一覧エンドポイントのハンドラーです。
func (s *Server) handleListCalendars(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewListCalendarsParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	calendars, err := s.store.ListCalendars(r.Context(), params.Pagination)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// 空配列を返すためにnilチェック
	if calendars == nil {
		calendars = []*model.Calendar{}
	}
	writeJSON(w, &ListCalendarsResponse{Items: calendars}, http.StatusOK)
}

// CalendarParams represents parameters addressing a single calendar.
type CalendarParams struct {
	CalendarID *model.CalendarID
}

// NewCalendarParams creates parameters for single-calendar endpoints from HTTP request.
func NewCalendarParams(r *http.Request) (*CalendarParams, error) {
	calendarID, err := model.NewCalendarID(r.PathValue("calendar_id"))
	if err != nil {
		return nil, err
	}
	return &CalendarParams{CalendarID: calendarID}, nil
}

// handleGetCalendar はカレンダー取得エンドポイントのハンドラーです。
func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	params, err := NewCalendarParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.store.GetCalendar(r.Context(), params.CalendarID.UUID())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	table := entry.Calendar.Table()
	writeJSON(w, &CalendarDetailResponse{
		CalendarResponse: CalendarResponse{Calendar: entry.Meta, Stats: table.Stats},
		Counts:           table.Counts,
	}, http.StatusOK)
}

// ImportCalendarParams represents parameters for re-importing a calendar.
type ImportCalendarParams struct {
	CalendarID *model.CalendarID
	Payload    []byte
}

// NewImportCalendarParams creates parameters for calendar re-import from HTTP request.
func NewImportCalendarParams(r *http.Request) (*ImportCalendarParams, error) {
	calendarID, err := model.NewCalendarID(r.PathValue("calendar_id"))
	if err != nil {
		return nil, err
	}
	payload, err := readPayload(r)
	if err != nil {
		return nil, err
	}
	return &ImportCalendarParams{CalendarID: calendarID, Payload: payload}, nil
}

// handleImportCalendar はカレンダー再インポートエンドポイントのハンドラーです。
// 空のボディは何も変更しません。
func (s *Server) handleImportCalendar(w http.ResponseWriter, r *http.Request) {
	params, err := NewImportCalendarParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	imported, err := s.metrics.ObserveImporter("http", s.store).ImportCalendar(r.Context(), params.CalendarID.UUID(), params.Payload)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	entry, err := s.store.GetCalendar(r.Context(), params.CalendarID.UUID())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, &ImportCalendarResponse{
		CalendarResponse: newCalendarResponse(entry),
		Imported:         imported,
	}, http.StatusOK)
}

// handleDeleteCalendar はカレンダー削除エンドポイントのハンドラーです。
func (s *Server) handleDeleteCalendar(w http.ResponseWriter, r *http.Request) {
	params, err := NewCalendarParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteCalendar(r.Context(), params.CalendarID.UUID()); err != nil {
		writeStoreError(w, err)
		return
	}
	s.metrics.CalendarDeleted()

	w.WriteHeader(http.StatusNoContent)
}

// handleGetModel は描画用モデル取得エンドポイントのハンドラーです。
func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	params, err := NewCalendarParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.store.GetCalendar(r.Context(), params.CalendarID.UUID())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	m, err := entry.Calendar.Model()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.metrics.ObserveRender("json")

	assembler := entry.Calendar.Assembler()
	writeJSON(w, &ModelResponse{
		Model:       m,
		MonthLabels: assembler.MonthLabels(),
		Legend:      assembler.LegendBuckets(),
		Palette:     entry.Calendar.Palette(),
	}, http.StatusOK)
}

// handleGetGraph はSVGグラフエンドポイントのハンドラーです。
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewCalendarParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := s.store.GetCalendar(r.Context(), params.CalendarID.UUID())
	if err != nil {
		if errors.Is(err, model.ErrCalendarNotFound) {
			http.Error(w, "Calendar not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting calendar: %v", err)
		http.Error(w, "Failed to retrieve calendar", http.StatusInternalServerError)
		return
	}

	m, err := entry.Calendar.Model()
	if err != nil {
		log.Printf("Error assembling heatmap: %v", err)
		http.Error(w, "Failed to render graph", http.StatusInternalServerError)
		return
	}

	// SVGの生成
	svg := heatmap.GenerateCalendarSVG(m, entry.Calendar.Palette(), entry.Calendar.Options())
	s.metrics.ObserveRender("svg")

	// レスポンスの返却
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg))
}

// Handler はアクセスログを出力するハンドラーを返します。
func (s *Server) Handler() http.Handler {
	return handlers.LoggingHandler(os.Stdout, s)
}

// Run はサーバーを指定されたアドレスで起動します。
func (s *Server) Run(addr string) error {
	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// isClientError reports whether err is caused by the request rather than the server.
func isClientError(err error) bool {
	return errors.Is(err, model.ErrCalendarNotFound) || model.IsMalformedInput(err) || model.IsInvalidConfiguration(err)
}
