package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

// RoleRepo reads role context and the ordered question set.
type RoleRepo struct{ Pool PgxPool }

// NewRoleRepo constructs a RoleRepo with the given pool.
func NewRoleRepo(p PgxPool) *RoleRepo { return &RoleRepo{Pool: p} }

// LoadQuestionSet returns the role's questions in role order with competencies attached.
func (r *RoleRepo) LoadQuestionSet(ctx domain.Context, roleID string) (domain.QuestionSet, error) {
	tracer := otel.Tracer("repo.roles")
	ctx, span := tracer.Start(ctx, "roles.LoadQuestionSet")
	defer span.End()
	span.SetAttributes(attribute.String("role.id", roleID))

	qs := domain.QuestionSet{RoleID: roleID}
	row := r.Pool.QueryRow(ctx, `SELECT title, description FROM roles WHERE id=$1`, roleID)
	if err := row.Scan(&qs.RoleTitle, &qs.RoleDescription); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.QuestionSet{}, fmt.Errorf("op=role.load_questions: role %s: %w", roleID, domain.ErrNotFound)
		}
		return domain.QuestionSet{}, fmt.Errorf("op=role.load_questions: %w", err)
	}

	q := `SELECT q.id, q.type, q.order_index, q.text,
			c.id, c.name, c.description, c.weight, c.rubric
		FROM questions q
		LEFT JOIN competencies c ON c.id = q.competency_id
		WHERE q.role_id=$1
		ORDER BY q.order_index ASC, q.id ASC`
	rows, err := r.Pool.Query(ctx, q, roleID)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("op=role.load_questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			question                   domain.Question
			compID, compName, compDesc *string
			weight                     *int
			rubric                     []byte
		)
		if err := rows.Scan(&question.ID, &question.Type, &question.OrderIndex, &question.Text,
			&compID, &compName, &compDesc, &weight, &rubric); err != nil {
			return domain.QuestionSet{}, fmt.Errorf("op=role.load_questions: %w", err)
		}
		question.RoleID = roleID
		if compID != nil {
			comp := domain.Competency{ID: *compID}
			if compName != nil {
				comp.Name = *compName
			}
			if compDesc != nil {
				comp.Description = *compDesc
			}
			if weight != nil {
				comp.Weight = *weight
			}
			if err := decodeRubric(rubric, &comp.Rubric); err != nil {
				return domain.QuestionSet{}, fmt.Errorf("op=role.load_questions: competency %s: %w", comp.ID, err)
			}
			question.Competency = &comp
		}
		qs.Questions = append(qs.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("op=role.load_questions: %w", err)
	}
	span.SetAttributes(attribute.Int("questions.count", len(qs.Questions)))
	return qs, nil
}

// decodeRubric accepts either a JSON array of four anchors or an object keyed "1".."4".
func decodeRubric(raw []byte, dst *[4]string) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty rubric", domain.ErrSchemaInvalid)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) != 4 {
			return fmt.Errorf("%w: rubric has %d levels", domain.ErrSchemaInvalid, len(list))
		}
		copy(dst[:], list)
		return nil
	}
	var byLevel map[string]string
	if err := json.Unmarshal(raw, &byLevel); err != nil {
		return fmt.Errorf("%w: rubric: %v", domain.ErrSchemaInvalid, err)
	}
	for i := 0; i < 4; i++ {
		v, ok := byLevel[fmt.Sprint(i+1)]
		if !ok {
			return fmt.Errorf("%w: rubric missing level %d", domain.ErrSchemaInvalid, i+1)
		}
		dst[i] = v
	}
	return nil
}
