// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import "github.com/google/uuid"

// View names the screen a write operation hands over to.
type View string

const (
	ViewPostList     View = "post_list"
	ViewPostDetail   View = "post_detail"
	ViewDraftList    View = "draft_list"
	ViewCommentList  View = "comment_list"
	ViewCategoryList View = "category_list"
	ViewLogin        View = "login"
)

// NoticeLevel classifies a one-time notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message to show the user once, on the next view.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Outcome tells the caller where to go after a write. ID is the entity the
// view is about, when it needs one.
type Outcome struct {
	View   View
	ID     uuid.UUID
	Notice *Notice
}

// Notice texts.
const (
	MsgPostUpdated      = "Your post has been updated successfully!"
	MsgPostStillDraft   = "Your post has been updated but still in Drafts"
	MsgLiked            = "You have liked the post"
	MsgUnliked          = "You have unliked the post"
	MsgLoginToLike      = "You must be logged in to like posts"
	MsgLoginToContinue  = "Please log in to continue."
	MsgCategoryCreated  = "Category created."
	MsgPostDeleted      = "Post deleted."
	MsgReplyPosted      = "Reply posted."
	MsgCommentPosted    = "Comment posted."
	MsgCommentUpdated   = "Comment updated."
	MsgPostCreated      = "Post published."
	MsgPostSavedAsDraft = "Post saved to your drafts."
)
