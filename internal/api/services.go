package api

import "github.com/inkpost/inkpost-server/internal/service"

// Services holds every service the HTTP layer calls.
type Services struct {
	Auth     *service.AuthService
	Posts    *service.PostService
	Tags     *service.TagService
	Sections *service.SectionService
	Comments *service.CommentService
	Replies  *service.ReplyService
	Search   *service.SearchService
}
