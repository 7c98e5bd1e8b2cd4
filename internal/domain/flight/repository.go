package flight

import "context"

// Repository はフライトリポジトリのインターフェース
type Repository interface {
	// Create は新しいフライトを作成する
	Create(ctx context.Context, f *Flight) error

	// GetByID はIDからフライトを取得する
	GetByID(ctx context.Context, id string) (*Flight, error)

	// List はフライト一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Flight, error)

	// Update はフライトを更新する
	Update(ctx context.Context, f *Flight) error

	// Delete はフライトを削除する
	Delete(ctx context.Context, id string) error
}
