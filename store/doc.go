// 版权所有 2024 SkillFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 store 提供基于 SQLite 的异步任务日志。

视频与长文本合成这类任务制接口的结果 URL 会在约 24 小时后
过期，Journal 把任务 ID、状态、结果地址与过期时间持久化，
支持查询待完成任务与即将过期且尚未下载的结果。
*/
package store
