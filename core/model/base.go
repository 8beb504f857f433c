package model

import (
	"sync"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// String は状態名を返す
func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not fitted"
}

// BaseEstimator は全てのモデルの基底となる構造体
//
// 状態遷移は NotFitted → Fitted の一方向のみ。学習済みモデルを再学習する
// 遷移は存在しない。
type BaseEstimator struct {
	mu       sync.RWMutex
	state    EstimatorState
	nSamples int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == Fitted
}

// State は現在の状態を返す
func (e *BaseEstimator) State() EstimatorState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// SetFitted はモデルを学習済み状態に設定する
//
// nSamples は学習に使ったサンプル数。読み込んだモデルでは 0。
func (e *BaseEstimator) SetFitted(nSamples int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Fitted
	e.nSamples = nSamples
}

// NSamples は学習時のサンプル数を返す
func (e *BaseEstimator) NSamples() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nSamples
}

// RequireFitted は未学習なら NotFittedError を返す
func (e *BaseEstimator) RequireFitted(modelName, method string) error {
	if !e.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// RequireUnfitted は学習済みなら AlreadyFittedError を返す
func (e *BaseEstimator) RequireUnfitted(modelName string) error {
	if e.IsFitted() {
		return errors.NewAlreadyFittedError(modelName)
	}
	return nil
}
