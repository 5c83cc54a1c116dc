package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"univera/backend/internal/model"
	"univera/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var filtered []model.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.DepartmentID != "" && (u.DepartmentID == nil || *u.DepartmentID != filter.DepartmentID) {
			continue
		}
		if filter.ClassID != "" && (u.ClassID == nil || *u.ClassID != filter.ClassID) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(u.Name, filter.Keyword) && !strings.Contains(u.Email, filter.Keyword) {
			continue
		}
		filtered = append(filtered, *u)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListByClass(_ context.Context, classID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == model.RoleStudent && u.ClassID != nil && *u.ClassID == classID {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RollNo < result[j].RollNo })
	return result, nil
}

func (m *mockUserRepo) ListByRollNos(_ context.Context, classID string, rollNos []string) ([]model.User, error) {
	want := make(map[string]bool, len(rollNos))
	for _, r := range rollNos {
		want[r] = true
	}
	var result []model.User
	for _, u := range m.users {
		if u.ClassID != nil && *u.ClassID == classID && want[u.RollNo] {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	departments map[string]*model.Department
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{departments: make(map[string]*model.Department)}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context, _ bool) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.departments, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = "course-" + course.Code
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, departmentID string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if departmentID != "" && c.DepartmentID != departmentID {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[string]*model.Class
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class)}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	if class.ClassID == "" {
		class.ClassID = "class-" + class.Name
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(_ context.Context, courseID string, semester *int) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		if courseID != "" && c.CourseID != courseID {
			continue
		}
		if semester != nil && c.Semester != *semester {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.classes, id)
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects  map[string]*model.Subject
	faculties map[string][]string // subjectID → facultyIDs
	users     *mockUserRepo       // 解析教师详情用；可为 nil
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{
		subjects:  make(map[string]*model.Subject),
		faculties: make(map[string][]string),
	}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		subject.SubjectID = "subject-" + subject.Code
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	s, ok := m.subjects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Faculties = m.resolveFaculties(id)
	return &cp, nil
}

func (m *mockSubjectRepo) List(_ context.Context, courseID string, semester *int) ([]model.Subject, error) {
	var result []model.Subject
	for id, s := range m.subjects {
		if courseID != "" && s.CourseID != courseID {
			continue
		}
		if semester != nil && s.Semester != *semester {
			continue
		}
		cp := *s
		cp.Faculties = m.resolveFaculties(id)
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockSubjectRepo) ListByFaculty(_ context.Context, facultyID string) ([]model.Subject, error) {
	var result []model.Subject
	for id, ids := range m.faculties {
		for _, fid := range ids {
			if fid == facultyID {
				result = append(result, *m.subjects[id])
				break
			}
		}
	}
	return result, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) ReplaceFaculties(_ context.Context, subjectID string, facultyIDs []string) error {
	m.faculties[subjectID] = append([]string(nil), facultyIDs...)
	return nil
}

func (m *mockSubjectRepo) resolveFaculties(subjectID string) []model.User {
	if m.users == nil {
		return nil
	}
	var result []model.User
	for _, fid := range m.faculties[subjectID] {
		if u, ok := m.users.users[fid]; ok {
			result = append(result, *u)
		}
	}
	return result
}

// ── Mock TimeTableRepository ──

type mockTimeTableRepo struct {
	tables    map[string]*model.TimeTable
	idCounter int
	getErr    error // 注入远端读失败
	saveErr   error // 注入远端写失败
}

func newMockTimeTableRepo() *mockTimeTableRepo {
	return &mockTimeTableRepo{tables: make(map[string]*model.TimeTable)}
}

func (m *mockTimeTableRepo) GetByID(_ context.Context, id string) (*model.TimeTable, error) {
	if t, ok := m.tables[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeTableRepo) GetActiveByClass(_ context.Context, classID string) (*model.TimeTable, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, t := range m.tables {
		if t.ClassID == classID && t.IsActive {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeTableRepo) SaveWithSlots(_ context.Context, tt *model.TimeTable, slots []model.TimeTableSlot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if tt.TimeTableID == "" {
		m.idCounter++
		tt.TimeTableID = fmt.Sprintf("tt-%d", m.idCounter)
		tt.IsActive = true
	} else if existing, ok := m.tables[tt.TimeTableID]; ok {
		if existing.Version != tt.Version {
			return gorm.ErrRecordNotFound
		}
		tt.Version++
	}
	for i := range slots {
		slots[i].TimeTableID = tt.TimeTableID
		if slots[i].SlotID == "" {
			m.idCounter++
			slots[i].SlotID = fmt.Sprintf("slot-%d", m.idCounter)
		}
	}
	tt.Slots = slots
	m.tables[tt.TimeTableID] = tt
	return nil
}

func (m *mockTimeTableRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.tables, id)
	return nil
}

// ── Mock ForumRepository ──

type mockForumRepo struct {
	forums    map[int64]*model.Forum
	messages  map[int64]*model.ForumMessage
	idCounter int64
	saveErr   error // 注入远端写失败
	listErr   error // 注入远端读失败
}

func newMockForumRepo() *mockForumRepo {
	return &mockForumRepo{
		forums:   make(map[int64]*model.Forum),
		messages: make(map[int64]*model.ForumMessage),
	}
}

func (m *mockForumRepo) Create(_ context.Context, forum *model.Forum) error {
	if forum.ForumID == 0 {
		m.idCounter++
		forum.ForumID = m.idCounter
	}
	m.forums[forum.ForumID] = forum
	return nil
}

func (m *mockForumRepo) GetByID(_ context.Context, id int64) (*model.Forum, error) {
	if f, ok := m.forums[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockForumRepo) GetBySubject(_ context.Context, subjectID string) (*model.Forum, error) {
	for _, f := range m.forums {
		if f.SubjectID == subjectID {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockForumRepo) ListBySubjects(_ context.Context, subjectIDs []string) ([]model.Forum, error) {
	want := make(map[string]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		want[id] = true
	}
	var result []model.Forum
	for _, f := range m.forums {
		if len(subjectIDs) == 0 || want[f.SubjectID] {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *mockForumRepo) SaveMessages(_ context.Context, msgs []model.ForumMessage) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for i := range msgs {
		cp := msgs[i]
		m.messages[cp.MessageID] = &cp
	}
	return nil
}

func (m *mockForumRepo) DeleteMessages(_ context.Context, ids []int64) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, id := range ids {
		delete(m.messages, id)
	}
	return nil
}

func (m *mockForumRepo) ListMessages(_ context.Context, forumID int64, limit int) ([]model.ForumMessage, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.ForumMessage
	for _, msg := range m.messages {
		if msg.ForumID == forumID {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].MessageID < result[j].MessageID
	})
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records []model.AttendanceRecord
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) ReplaceForDate(_ context.Context, subjectID string, date time.Time, records []model.AttendanceRecord) error {
	var remaining []model.AttendanceRecord
	for _, r := range m.records {
		if !(r.SubjectID == subjectID && r.ClassDate.Equal(date)) {
			remaining = append(remaining, r)
		}
	}
	m.records = append(remaining, records...)
	return nil
}

func (m *mockAttendanceRepo) ListBySubject(_ context.Context, subjectID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.SubjectID == subjectID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByStudent(_ context.Context, studentID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.StudentID == studentID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) CountDates(_ context.Context, subjectID string) (int64, error) {
	dates := make(map[string]bool)
	for _, r := range m.records {
		if r.SubjectID == subjectID {
			dates[r.ClassDate.Format("2006-01-02")] = true
		}
	}
	return int64(len(dates)), nil
}

// ── Mock AnnouncementRepository ──

type mockAnnouncementRepo struct {
	announcements map[string]*model.Announcement
	idCounter     int
}

func newMockAnnouncementRepo() *mockAnnouncementRepo {
	return &mockAnnouncementRepo{announcements: make(map[string]*model.Announcement)}
}

func (m *mockAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	if a.AnnouncementID == "" {
		m.idCounter++
		a.AnnouncementID = fmt.Sprintf("ann-%d", m.idCounter)
	}
	m.announcements[a.AnnouncementID] = a
	return nil
}

func (m *mockAnnouncementRepo) GetByID(_ context.Context, id string) (*model.Announcement, error) {
	if a, ok := m.announcements[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnnouncementRepo) List(_ context.Context, filter repository.AnnouncementFilter, offset, limit int) ([]model.Announcement, int64, error) {
	var filtered []model.Announcement
	for _, a := range m.announcements {
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if filter.ClassID != "" {
			campusWide := a.ClassID == nil && a.DepartmentID == nil
			if !campusWide && (a.ClassID == nil || *a.ClassID != filter.ClassID) {
				continue
			}
		}
		filtered = append(filtered, *a)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockAnnouncementRepo) Update(_ context.Context, a *model.Announcement) error {
	m.announcements[a.AnnouncementID] = a
	return nil
}

func (m *mockAnnouncementRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.announcements, id)
	return nil
}

// ── Mock PolicyRepository ──

type mockPolicyRepo struct {
	policies  map[string]*model.Policy
	idCounter int
}

func newMockPolicyRepo() *mockPolicyRepo {
	return &mockPolicyRepo{policies: make(map[string]*model.Policy)}
}

func (m *mockPolicyRepo) Create(_ context.Context, p *model.Policy) error {
	if p.PolicyID == "" {
		m.idCounter++
		p.PolicyID = fmt.Sprintf("policy-%d", m.idCounter)
	}
	m.policies[p.PolicyID] = p
	return nil
}

func (m *mockPolicyRepo) GetByID(_ context.Context, id string) (*model.Policy, error) {
	if p, ok := m.policies[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPolicyRepo) List(_ context.Context, audience, category string) ([]model.Policy, error) {
	var result []model.Policy
	for _, p := range m.policies {
		if audience != "" && p.Audience != audience && p.Audience != "all" {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPolicyRepo) Update(_ context.Context, p *model.Policy) error {
	m.policies[p.PolicyID] = p
	return nil
}

func (m *mockPolicyRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.policies, id)
	return nil
}

// ── 聚合构建 ──

// mockRepos 各 mock 仓储的直接引用，便于测试中注入数据
type mockRepos struct {
	user         *mockUserRepo
	dept         *mockDeptRepo
	course       *mockCourseRepo
	class        *mockClassRepo
	subject      *mockSubjectRepo
	timeTable    *mockTimeTableRepo
	forum        *mockForumRepo
	attendance   *mockAttendanceRepo
	announcement *mockAnnouncementRepo
	policy       *mockPolicyRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:         newMockUserRepo(),
		dept:         newMockDeptRepo(),
		course:       newMockCourseRepo(),
		class:        newMockClassRepo(),
		subject:      newMockSubjectRepo(),
		timeTable:    newMockTimeTableRepo(),
		forum:        newMockForumRepo(),
		attendance:   newMockAttendanceRepo(),
		announcement: newMockAnnouncementRepo(),
		policy:       newMockPolicyRepo(),
	}
	m.subject.users = m.user
	repo := &repository.Repository{
		User:         m.user,
		Department:   m.dept,
		Course:       m.course,
		Class:        m.class,
		Subject:      m.subject,
		TimeTable:    m.timeTable,
		Forum:        m.forum,
		Attendance:   m.attendance,
		Announcement: m.announcement,
		Policy:       m.policy,
	}
	return repo, m
}
