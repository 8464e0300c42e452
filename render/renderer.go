// C:\Users\wasab\OneDrive\デスクトップ\PORTION\render\renderer.go

// Package render は全エンドポイント共通のJSONレスポンスを書き出します。
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"portion/apperr"
)

// JSON は status で v を書き出します。
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Success は {"status":"success", ...fields} を書き出します。
func Success(w http.ResponseWriter, fields map[string]interface{}) {
	body := map[string]interface{}{"status": "success"}
	for k, v := range fields {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Error は err をHTTPステータスに変換し {"status":"error","message":...} を書き出します。
// サーバー側の失敗のみログに残します。
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	body := map[string]interface{}{
		"status":  "error",
		"message": apperr.Message(err),
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind == apperr.KindMissingField && len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	JSON(w, status, body)
}

// Decode はJSONボディを dst に読み込みます。required のうち欠けている・null の項目は
// まとめて MissingField エラーにします。
func Decode(r *http.Request, dst interface{}, required ...string) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidArgument, "Failed to read request body", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return apperr.New(apperr.KindInvalidArgument, "No data provided")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return apperr.Wrap(apperr.KindInvalidArgument, "Invalid JSON", err)
	}
	if missing := MissingFields(fields, required); len(missing) > 0 {
		return apperr.MissingFields(missing)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Wrap(apperr.KindInvalidArgument, "Invalid request: "+err.Error(), err)
	}
	return nil
}

// MissingFields は required のうち欠けている・null の項目名を順に返します。
func MissingFields(fields map[string]json.RawMessage, required []string) []string {
	var missing []string
	for _, name := range required {
		v, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			missing = append(missing, name)
		}
	}
	return missing
}
