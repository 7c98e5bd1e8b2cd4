package application

import "errors"

// アプリケーション層のエラー定義
var (
	ErrNoPassengers            = errors.New("搭乗者は1名以上指定してください")
	ErrCodeGenerationExhausted = errors.New("確認コードの生成に失敗しました")
)
