package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/models"
)

// JSON views for the API responses

type pageView[T any] struct {
	PagesCount int `json:"pagesCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	Items      []T `json:"items"`
}

func toPageView[M any, V any](page models.Page[M], convert func(M) V) pageView[V] {
	items := make([]V, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, convert(m))
	}

	return pageView[V]{
		PagesCount: page.PagesCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		Items:      items,
	}
}

type blogView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	WebsiteURL   string    `json:"websiteUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	IsMembership bool      `json:"isMembership"`
}

func toBlogView(b models.Blog) blogView {
	return blogView{
		ID:           b.ID,
		Name:         b.Name,
		Description:  b.Description,
		WebsiteURL:   b.WebsiteURL,
		CreatedAt:    b.CreatedAt,
		IsMembership: b.IsMembership,
	}
}

type likeDetailsView struct {
	AddedAt time.Time `json:"addedAt"`
	UserID  uuid.UUID `json:"userId"`
	Login   string    `json:"login"`
}

type likesInfoView struct {
	LikesCount    int               `json:"likesCount"`
	DislikesCount int               `json:"dislikesCount"`
	MyStatus      models.LikeStatus `json:"myStatus"`
}

type extendedLikesInfoView struct {
	likesInfoView
	NewestLikes []likeDetailsView `json:"newestLikes"`
}

type postView struct {
	ID               uuid.UUID             `json:"id"`
	Title            string                `json:"title"`
	ShortDescription string                `json:"shortDescription"`
	Content          string                `json:"content"`
	BlogID           uuid.UUID             `json:"blogId"`
	BlogName         string                `json:"blogName"`
	CreatedAt        time.Time             `json:"createdAt"`
	ExtendedLikes    extendedLikesInfoView `json:"extendedLikesInfo"`
}

func toPostView(p models.Post) postView {
	newest := make([]likeDetailsView, 0, len(p.LikesInfo.NewestLikes))
	for _, l := range p.LikesInfo.NewestLikes {
		newest = append(newest, likeDetailsView{AddedAt: l.AddedAt, UserID: l.UserID, Login: l.Login})
	}

	return postView{
		ID:               p.ID,
		Title:            p.Title,
		ShortDescription: p.ShortDescription,
		Content:          p.Content,
		BlogID:           p.BlogID,
		BlogName:         p.BlogName,
		CreatedAt:        p.CreatedAt,
		ExtendedLikes: extendedLikesInfoView{
			likesInfoView: likesInfoView{
				LikesCount:    p.LikesInfo.LikesCount,
				DislikesCount: p.LikesInfo.DislikesCount,
				MyStatus:      p.LikesInfo.MyStatus,
			},
			NewestLikes: newest,
		},
	}
}

type commentatorInfoView struct {
	UserID    uuid.UUID `json:"userId"`
	UserLogin string    `json:"userLogin"`
}

type commentView struct {
	ID              uuid.UUID           `json:"id"`
	Content         string              `json:"content"`
	CommentatorInfo commentatorInfoView `json:"commentatorInfo"`
	CreatedAt       time.Time           `json:"createdAt"`
	LikesInfo       likesInfoView       `json:"likesInfo"`
}

func toCommentView(c models.Comment) commentView {
	return commentView{
		ID:      c.ID,
		Content: c.Content,
		CommentatorInfo: commentatorInfoView{
			UserID:    c.AuthorID,
			UserLogin: c.AuthorLogin,
		},
		CreatedAt: c.CreatedAt,
		LikesInfo: likesInfoView{
			LikesCount:    c.LikesInfo.LikesCount,
			DislikesCount: c.LikesInfo.DislikesCount,
			MyStatus:      c.LikesInfo.MyStatus,
		},
	}
}

type userView struct {
	ID        uuid.UUID `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(u models.User) userView {
	return userView{
		ID:        u.ID,
		Login:     u.Login,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type deviceView struct {
	DeviceID       uuid.UUID `json:"deviceId"`
	Title          string    `json:"title"`
	IP             string    `json:"ip"`
	LastActiveDate time.Time `json:"lastActiveDate"`
}

func toDeviceView(s models.DeviceSession) deviceView {
	return deviceView{
		DeviceID:       s.DeviceID,
		Title:          s.DeviceName,
		IP:             s.DeviceIP,
		LastActiveDate: s.CreatedAt,
	}
}
