package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tarot42/backend/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// userColumns はusersテーブルのSELECT列リスト。scanUserと順序を一致させること。
const userColumns = `id, name, email, email_verified, image,
	zodiac_sign, selected_element, personal_goals, additional_details,
	focus_area, gender, age_range, birth_date_time, include_time,
	birthday, age, created_at, updated_at`

// scanUser は1行をmodel.Userにスキャンする。
func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	var birthday sql.NullTime
	var age sql.NullInt64

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.EmailVerified, &user.Image,
		&user.ZodiacSign, &user.SelectedElement, &user.PersonalGoals, &user.AdditionalDetails,
		&user.FocusArea, &user.Gender, &user.AgeRange, &user.BirthDateTime, &user.IncludeTime,
		&birthday, &age, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if birthday.Valid {
		t := birthday.Time
		user.Birthday = &t
	}
	if age.Valid {
		a := int(age.Int64)
		user.Age = &a
	}

	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, email_verified, image, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Email, user.EmailVerified, user.Image,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// UpdateProfile は指定ユーザーのプロフィールを部分更新し、更新後の行を返す。
// 指定されたフィールドのみをSET句に含める単一ステートメントで実行する。
// 対象行が存在しない場合はnilを返す。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.User, error) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.ZodiacSign != nil {
		add("zodiac_sign", *update.ZodiacSign)
	}
	if update.SelectedElement != nil {
		add("selected_element", *update.SelectedElement)
	}
	if update.PersonalGoals != nil {
		add("personal_goals", *update.PersonalGoals)
	}
	if update.AdditionalDetails != nil {
		add("additional_details", *update.AdditionalDetails)
	}
	if update.FocusArea != nil {
		add("focus_area", *update.FocusArea)
	}
	if update.Gender != nil {
		add("gender", *update.Gender)
	}
	if update.AgeRange != nil {
		add("age_range", *update.AgeRange)
	}
	if update.BirthDateTime != nil {
		add("birth_date_time", *update.BirthDateTime)
	}
	if update.IncludeTime != nil {
		add("include_time", *update.IncludeTime)
	}
	if update.Birthday != nil {
		add("birthday", *update.Birthday)
	}

	// updated_atは常に更新する
	sets = append(sets, "updated_at = now()")

	args = append(args, userID)
	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args),
	)

	row := r.db.QueryRowContext(ctx, query, args...)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return user, nil
}

// MarkEmailVerified は指定メールアドレスのユーザーを確認済みにする。
func (r *PostgresUserRepo) MarkEmailVerified(ctx context.Context, email string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = now() WHERE email = $1`,
		email,
	)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", email)
	}
	return nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 関連するsessions、accounts、user_goals、drawn_cards、auth_eventsはCASCADE削除される。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
