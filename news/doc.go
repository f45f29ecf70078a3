// 版权所有 2024 SkillFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 news 聚合多源科技资讯。

Aggregator 并发抓取一组 RSS 2.0 / Atom 订阅源（内置
TechCrunch、The Verge、Ars Technica、36kr 等八个源），
以 MD5(title+url) 去重，按发布时间倒序截断返回。单个源
失败只记录日志，不影响其余源。

HackerNews 查询官方 Firebase API：先取 newstories 列表，
再并发拉取条目详情，只保留 type 为 story 的结果并附上
news.ycombinator.com 讨论链接。
*/
package news
