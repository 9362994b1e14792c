package value

import "strconv"

// GroupGlobal общая группа всех подписчиков рынка.
const GroupGlobal = "global"

const userGroupPrefix = "user:"

// UserGroup личная группа пользователя.
func UserGroup(userID int64) string {
	return userGroupPrefix + strconv.FormatInt(userID, 10)
}
