package confirmation

import (
	"crypto/rand"
	"fmt"
)

// CodeLength は確認コードの長さ
const CodeLength = 8

// 紛らわしい文字（0/O, 1/I）を除いた英数字
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generator は予約確認コードを生成する
type Generator struct{}

// NewGenerator は新しいGeneratorを作成する
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate は固定長の確認コードを生成する
// 衝突チェックは呼び出し側がチケットストアに対して行う
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("乱数生成に失敗: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
