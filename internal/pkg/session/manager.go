package session

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"fabula/internal/model"
	"fabula/internal/pkg/id"
)

// gin context 键
const (
	contextKeyData = "session_data"
	contextKeyID   = "session_id"
)

// Manager 负责签发/校验会话Cookie并读写会话状态
type Manager struct {
	store      Store
	secret     []byte
	cookieName string
	ttl        time.Duration
}

// NewManager 创建会话管理器
func NewManager(store Store, secret, cookieName string, ttl time.Duration) *Manager {
	if cookieName == "" {
		cookieName = "fabula_session"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		store:      store,
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// Begin 解析请求中的会话Cookie，加载（或新建）会话状态并挂到 gin context
// Cookie 缺失、签名非法时发放新会话
func (m *Manager) Begin(c *gin.Context) *model.SessionData {
	sid := ""
	if token, err := c.Cookie(m.cookieName); err == nil {
		sid = m.parseToken(token)
	}

	isNew := sid == ""
	if isNew {
		sid = id.New()
		if token, err := m.issueToken(sid); err == nil {
			c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", false, true)
		} else {
			log.Error().Err(err).Msg("failed to sign session cookie")
		}
	}

	var data *model.SessionData
	if !isNew {
		loaded, err := m.store.Load(c.Request.Context(), sid)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sid).Msg("failed to load session, starting fresh")
		}
		data = loaded
	}
	if data == nil {
		data = model.NewSessionData()
	}

	c.Set(contextKeyID, sid)
	c.Set(contextKeyData, data)
	return data
}

// Persist 将 context 中的会话状态写回存储
// 处理器修改会话字段后需要显式调用
func (m *Manager) Persist(c *gin.Context) error {
	sid := IDFromContext(c)
	data := FromContext(c)
	if sid == "" || data == nil {
		return nil
	}
	return m.store.Save(c.Request.Context(), sid, data)
}

// FromContext 取出当前请求的会话状态
func FromContext(c *gin.Context) *model.SessionData {
	if v, ok := c.Get(contextKeyData); ok {
		if data, ok := v.(*model.SessionData); ok {
			return data
		}
	}
	return nil
}

// IDFromContext 取出当前请求的会话ID
func IDFromContext(c *gin.Context) string {
	return c.GetString(contextKeyID)
}

// issueToken 签发携带会话ID的 JWT
func (m *Manager) issueToken(sid string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"iat": time.Now().Unix(),
	})
	return token.SignedString(m.secret)
}

// parseToken 校验Cookie签名并取出会话ID；非法时返回空串
func (m *Manager) parseToken(tokenStr string) string {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}
