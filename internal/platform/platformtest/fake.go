// Package platformtest provides an in-memory platform.Client for tests.
package platformtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/cexll/swe-action/internal/platform"
)

// Call records one capability invocation.
type Call struct {
	Method    string
	Namespace platform.Namespace
	ID        int64
	Args      []string
}

// Fake is a scriptable platform.Client. Zero value is usable; maps are created lazily.
type Fake struct {
	mu sync.Mutex

	Server string

	Permissions   map[string]platform.PermissionLevel
	PermissionErr error
	UserTypes     map[string]string
	UserTypeErr   error

	PullRequests  map[int]*platform.PullRequest
	PullErr       error
	DefaultBranch string
	DefaultErr    error

	Branches        map[string]bool
	CreateBranchErr error
	DeleteBranchErr error

	Comparison *platform.Comparison
	CompareErr error

	IssueComments  map[int64]string
	ReviewComments map[int64]string
	NextCommentID  int64
	CreateErr      error
	UpdateErr      error

	Calls []Call
}

var _ platform.Client = (*Fake)(nil)

func (f *Fake) record(c Call) {
	f.Calls = append(f.Calls, c)
}

// CallsTo returns recorded calls of one method.
func (f *Fake) CallsTo(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) GetCollaboratorPermission(_ context.Context, owner, repo, user string) (platform.PermissionLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "GetCollaboratorPermission", Args: []string{owner, repo, user}})
	if f.PermissionErr != nil {
		return "", f.PermissionErr
	}
	if lvl, ok := f.Permissions[user]; ok {
		return lvl, nil
	}
	return platform.PermissionNone, nil
}

func (f *Fake) GetUserType(_ context.Context, login string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "GetUserType", Args: []string{login}})
	if f.UserTypeErr != nil {
		return "", f.UserTypeErr
	}
	if typ, ok := f.UserTypes[login]; ok {
		return typ, nil
	}
	return "User", nil
}

func (f *Fake) GetPullRequest(_ context.Context, owner, repo string, number int) (*platform.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "GetPullRequest", Args: []string{owner, repo, fmt.Sprint(number)}})
	if f.PullErr != nil {
		return nil, f.PullErr
	}
	pr, ok := f.PullRequests[number]
	if !ok {
		return nil, fmt.Errorf("pull request %d: %w", number, platform.ErrNotFound)
	}
	cp := *pr
	return &cp, nil
}

func (f *Fake) GetDefaultBranch(_ context.Context, owner, repo string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "GetDefaultBranch", Args: []string{owner, repo}})
	if f.DefaultErr != nil {
		return "", f.DefaultErr
	}
	if f.DefaultBranch == "" {
		return "main", nil
	}
	return f.DefaultBranch, nil
}

func (f *Fake) CreateBranch(_ context.Context, owner, repo, name, from string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "CreateBranch", Args: []string{owner, repo, name, from}})
	if f.CreateBranchErr != nil {
		return f.CreateBranchErr
	}
	if f.Branches == nil {
		f.Branches = map[string]bool{}
	}
	if f.Branches[name] {
		return &platform.StatusError{Op: "create branch", StatusCode: 422, Message: "reference already exists"}
	}
	f.Branches[name] = true
	return nil
}

func (f *Fake) DeleteBranch(_ context.Context, owner, repo, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "DeleteBranch", Args: []string{owner, repo, name}})
	if f.DeleteBranchErr != nil {
		return f.DeleteBranchErr
	}
	delete(f.Branches, name)
	return nil
}

func (f *Fake) CompareBranches(_ context.Context, owner, repo, base, head string) (*platform.Comparison, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "CompareBranches", Args: []string{owner, repo, base, head}})
	if f.CompareErr != nil {
		return nil, f.CompareErr
	}
	if f.Comparison == nil {
		return &platform.Comparison{}, nil
	}
	cp := *f.Comparison
	return &cp, nil
}

func (f *Fake) CreateComment(_ context.Context, owner, repo string, number int, body string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "CreateComment", Args: []string{owner, repo, fmt.Sprint(number), body}})
	if f.CreateErr != nil {
		return 0, f.CreateErr
	}
	if f.IssueComments == nil {
		f.IssueComments = map[int64]string{}
	}
	if f.NextCommentID == 0 {
		f.NextCommentID = 1000
	}
	id := f.NextCommentID
	f.NextCommentID++
	f.IssueComments[id] = body
	return id, nil
}

func (f *Fake) store(ns platform.Namespace) map[int64]string {
	if ns == platform.NamespaceReview {
		return f.ReviewComments
	}
	return f.IssueComments
}

func (f *Fake) GetComment(_ context.Context, owner, repo string, ns platform.Namespace, id int64) (*platform.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "GetComment", Namespace: ns, ID: id, Args: []string{owner, repo}})
	body, ok := f.store(ns)[id]
	if !ok {
		return nil, &platform.StatusError{Op: "get " + string(ns) + " comment", StatusCode: 404, Message: "Not Found"}
	}
	return &platform.Comment{ID: id, Namespace: ns, Body: body}, nil
}

func (f *Fake) UpdateComment(_ context.Context, owner, repo string, ns platform.Namespace, id int64, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "UpdateComment", Namespace: ns, ID: id, Args: []string{owner, repo, body}})
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	m := f.store(ns)
	if _, ok := m[id]; !ok {
		return &platform.StatusError{Op: "update " + string(ns) + " comment", StatusCode: 404, Message: "Not Found"}
	}
	m[id] = body
	return nil
}

func (f *Fake) ServerURL() string {
	if f.Server == "" {
		return "https://github.com"
	}
	return f.Server
}

func (f *Fake) BranchURL(owner, repo, branch string) string {
	return fmt.Sprintf("%s/%s/%s/tree/%s", f.ServerURL(), owner, repo, branch)
}

// IssueBody returns the stored issue-namespace body.
func (f *Fake) IssueBody(id int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.IssueComments[id]
}

// ReviewBody returns the stored review-namespace body.
func (f *Fake) ReviewBody(id int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ReviewComments[id]
}
