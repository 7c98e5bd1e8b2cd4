package inventory

import "fmt"

// formatSeatNumber は接頭辞と席位置から座席番号を組み立てる
func formatSeatNumber(prefix string, n int) string {
	if prefix == "" {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}
