package model

import (
	"encoding/json"
	"math"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

// レコードのキー
const (
	KeyIntercept   = "intercept"
	KeySlope       = "slope"
	KeyRSquared    = "r_squared"
	KeyMSE         = "mse"
	KeyFeatureName = "feature_name"
	KeyTargetName  = "target_name"
	KeyDescription = "description"
)

// RecordKeys は永続化レコードが持つキーの一覧（順序固定）
var RecordKeys = []string{
	KeyIntercept,
	KeySlope,
	KeyRSquared,
	KeyMSE,
	KeyFeatureName,
	KeyTargetName,
	KeyDescription,
}

// Record は保存されたモデルのフラットな表現
type Record struct {
	Intercept   float64 `json:"intercept"`
	Slope       float64 `json:"slope"`
	RSquared    float64 `json:"r_squared"`
	MSE         float64 `json:"mse"`
	FeatureName string  `json:"feature_name"`
	TargetName  string  `json:"target_name"`
	Description string  `json:"description"`
}

// Map はレコードを7つのキーを持つマップに変換する
func (r Record) Map() map[string]any {
	return map[string]any{
		KeyIntercept:   r.Intercept,
		KeySlope:       r.Slope,
		KeyRSquared:    r.RSquared,
		KeyMSE:         r.MSE,
		KeyFeatureName: r.FeatureName,
		KeyTargetName:  r.TargetName,
		KeyDescription: r.Description,
	}
}

// Validate はレコードの値を検証する
func (r Record) Validate() error {
	for _, f := range []struct {
		key string
		v   float64
	}{
		{KeyIntercept, r.Intercept},
		{KeySlope, r.Slope},
		{KeyRSquared, r.RSquared},
		{KeyMSE, r.MSE},
	} {
		if !errors.IsFinite(f.v) {
			return errors.NewValidationError(f.key, errors.ReasonInvalidValue, f.v)
		}
	}
	if r.RSquared < 0 || r.RSquared > 1 {
		return errors.NewValidationError(KeyRSquared, errors.ReasonInvalidValue, r.RSquared)
	}
	if r.MSE < 0 {
		return errors.NewValidationError(KeyMSE, errors.ReasonInvalidValue, r.MSE)
	}
	if r.FeatureName == "" {
		return errors.NewValidationError(KeyFeatureName, errors.ReasonInvalidValue, r.FeatureName)
	}
	if r.TargetName == "" {
		return errors.NewValidationError(KeyTargetName, errors.ReasonInvalidValue, r.TargetName)
	}
	return nil
}

// RecordFromMap はマップからレコードを組み立てる
//
// キー集合は RecordKeys と完全に一致しなければならない。不足キーと余分な
// キーはまとめて一つの RecordKeysError で報告される。値の型が違う場合は
// ValidationError を返す。
func RecordFromMap(m map[string]any) (Record, error) {
	var missing, extra []string
	for _, k := range RecordKeys {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	known := make(map[string]struct{}, len(RecordKeys))
	for _, k := range RecordKeys {
		known[k] = struct{}{}
	}
	for k := range m {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return Record{}, errors.NewRecordKeysError(missing, extra)
	}

	var rec Record
	var err error
	if rec.Intercept, err = floatField(m, KeyIntercept); err != nil {
		return Record{}, err
	}
	if rec.Slope, err = floatField(m, KeySlope); err != nil {
		return Record{}, err
	}
	if rec.RSquared, err = floatField(m, KeyRSquared); err != nil {
		return Record{}, err
	}
	if rec.MSE, err = floatField(m, KeyMSE); err != nil {
		return Record{}, err
	}
	if rec.FeatureName, err = stringField(m, KeyFeatureName); err != nil {
		return Record{}, err
	}
	if rec.TargetName, err = stringField(m, KeyTargetName); err != nil {
		return Record{}, err
	}
	if rec.Description, err = stringField(m, KeyDescription); err != nil {
		return Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func floatField(m map[string]any, key string) (float64, error) {
	switch v := m[key].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) {
			return 0, errors.NewValidationError(key, errors.ReasonInvalidValue, v)
		}
		return f, nil
	default:
		return 0, errors.NewValidationError(key, errors.ReasonInvalidValue, v)
	}
}

func stringField(m map[string]any, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", errors.NewValidationError(key, errors.ReasonInvalidValue, m[key])
	}
	return s, nil
}
