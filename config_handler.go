// C:\Users\wasab\OneDrive\デスクトップ\PORTION\config_handler.go
package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"portion/config"
	"portion/render"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	render.JSON(w, statusCode, map[string]string{"status": "error", "message": message})
}

// GetConfigHandler は現在の設定を返します。
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, config.GetConfig())
	}
}

// SaveConfigHandler は新しい設定を検証して保存します。
// ストレージや接続先の変更は再起動後に反映されます。
func SaveConfigHandler(log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			writeJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if newCfg.Storage != "" && newCfg.Storage != config.StorageSQLite && newCfg.Storage != config.StorageXLSX {
			writeJSONError(w, "Unknown storage backend: "+newCfg.Storage, http.StatusBadRequest)
			return
		}
		for _, dir := range []string{newCfg.OrdersDir, newCfg.UsersDir, newCfg.ImagesDir} {
			if err := validateFolderPath(dir, log); err != nil {
				writeJSONError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		if err := config.SaveConfig(newCfg); err != nil {
			log.Error("failed to save config", zap.Error(err))
			writeJSONError(w, "Failed to save config", http.StatusInternalServerError)
			return
		}
		log.Info("config saved")
		render.Success(w, map[string]interface{}{"message": "Config saved"})
	}
}

// validateFolderPath は空文字か既存のディレクトリのみ受け付けます。
func validateFolderPath(path string, log *zap.Logger) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("Folder not found: " + path)
		}
		log.Warn("failed to check folder path", zap.String("path", path), zap.Error(err))
		return errors.New("Failed to check folder path: " + path)
	}
	if !info.IsDir() {
		return errors.New("Path is not a folder: " + path)
	}
	return nil
}
