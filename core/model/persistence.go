package model

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

// Format はレコードの保存形式
type Format string

const (
	// FormatGob は encoding/gob 形式（.gob）
	FormatGob Format = "gob"
	// FormatJSON はインデント付き JSON 形式（.json）
	FormatJSON Format = "json"
	// FormatZstd は zstd 圧縮した JSON 形式（.zst）
	FormatZstd Format = "zst"
)

// SupportedExtensions は保存・読み込みに使える拡張子の一覧
var SupportedExtensions = []string{".gob", ".json", ".zst"}

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
)

// FormatFromPath はファイルの拡張子から保存形式を決める
//
// 空のパスは ErrNoPathSelected、未対応の拡張子は FormatError になる。
func FormatFromPath(path string) (Format, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.WithStack(errors.ErrNoPathSelected)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gob":
		return FormatGob, nil
	case ".json":
		return FormatJSON, nil
	case ".zst":
		return FormatZstd, nil
	default:
		return "", errors.NewFormatError(path, ext, SupportedExtensions)
	}
}

// SaveRecord はレコードをファイルに保存する
//
// パラメータ:
//   - path: 保存先のファイルパス（拡張子で形式を決める）
//   - rec: 保存するレコード
//
// 使用例:
//
//	rec := reg.Record("sales model")
//	err := model.SaveRecord("model.json", rec)
func SaveRecord(path string, rec Record) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteRecord(&buf, format, rec); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write model record %s", path)
	}
	return nil
}

// LoadRecord はファイルからレコードを読み込む
//
// ファイルが存在しない場合、返るエラーは fs.ErrNotExist を包んでいる。
func LoadRecord(path string) (Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Record{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Record{}, errors.Wrapf(err, "failed to open model record %s", path)
	}
	defer f.Close()
	return ReadRecord(f, format)
}

// WriteRecord はレコードを指定形式で w に書き出す
func WriteRecord(w io.Writer, format Format, rec Record) error {
	m := rec.Map()
	switch format {
	case FormatGob:
		if err := gob.NewEncoder(w).Encode(m); err != nil {
			return errors.Wrap(err, "failed to encode model record")
		}
		return nil
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode model record")
		}
		_, err = w.Write(append(data, '\n'))
		return errors.WithStack(err)
	case FormatZstd:
		data, err := json.Marshal(m)
		if err != nil {
			return errors.Wrap(err, "failed to encode model record")
		}
		_, err = w.Write(zstdEncoder.EncodeAll(data, nil))
		return errors.WithStack(err)
	default:
		return errors.NewFormatError("", string(format), SupportedExtensions)
	}
}

// ReadRecord は r から指定形式のレコードを読み込み、キー集合と値を検証する
func ReadRecord(r io.Reader, format Format) (Record, error) {
	m := make(map[string]any)
	switch format {
	case FormatGob:
		if err := gob.NewDecoder(r).Decode(&m); err != nil {
			return Record{}, errors.Wrap(err, "failed to decode model record")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&m); err != nil {
			return Record{}, errors.Wrap(err, "failed to decode model record")
		}
	case FormatZstd:
		compressed, err := io.ReadAll(r)
		if err != nil {
			return Record{}, errors.Wrap(err, "failed to read model record")
		}
		data, err := zstdDecoder.DecodeAll(compressed, nil)
		if err != nil {
			return Record{}, errors.Wrap(err, "zstd decompression failed")
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return Record{}, errors.Wrap(err, "failed to decode model record")
		}
	default:
		return Record{}, errors.NewFormatError("", string(format), SupportedExtensions)
	}
	return RecordFromMap(m)
}
