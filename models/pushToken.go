package models

type PushToken struct {
	ID         int    `json:"id" goqu:"skipinsert"`
	User_ID    int    `json:"userId"`
	Push_Token string `json:"pushToken"`
	Platform   string `json:"platform"`
	Created_At string `json:"createdAt"`
	Updated_At string `json:"updatedAt"`
}

type PushTokenRequest struct {
	PushToken string `json:"pushToken" binding:"required,min=10,max=500"`
	Platform  string `json:"platform" binding:"required,oneof=ios android web"`
}
